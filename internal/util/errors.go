package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")
	ErrExamNotFound     = errors.New("exam not found")
	ErrBankNotFound     = errors.New("question bank not found")
	ErrVariantNotFound  = errors.New("variant not found")
	ErrResultNotFound   = errors.New("result not found")
	ErrEmptyRoster      = errors.New("student roster is empty")
	ErrVariantCount     = errors.New("variant count must be between 1 and 20")
)
