package service

import "schoolexam_backend/internal/model"

// Narrow store views the services write through. The concrete repository types
// satisfy them.

type examStore interface {
	FindByID(schoolID, id uint) (*model.Exam, error)
}

type variantStore interface {
	Create(variant *model.ExamVariant) error
	NextVariantNumber(examID uint) (int, error)
	FindByID(schoolID uint, id string) (*model.ExamVariant, error)
	ListByExam(examID uint) ([]model.ExamVariant, error)
	Delete(schoolID uint, id string) error
}

type resultStore interface {
	Upsert(result *model.ExamResult) error
	UpsertAssignment(result *model.ExamResult) error
	FindByExamAndStudent(schoolID, examID, studentID uint) (*model.ExamResult, error)
	ListByExam(schoolID, examID uint) ([]model.ExamResult, error)
}

type bankStore interface {
	Create(bank *model.QuestionBank) error
	FindByID(schoolID, id uint) (*model.QuestionBank, error)
	List(schoolID uint, page, limit int) ([]model.QuestionBank, int64, error)
	Replace(bank *model.QuestionBank, questions []model.Question) error
	Update(bank *model.QuestionBank) error
	Delete(schoolID, id uint) error
}

type questionSource interface {
	ListEligibleQuestions(bankID uint) ([]model.Question, error)
}

type rosterStore interface {
	FindStudents(schoolID uint, ids []uint) ([]model.User, error)
}
