package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"schoolexam_backend/internal/model"
	"schoolexam_backend/internal/repository"
	"schoolexam_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionBankService struct {
	Repo    bankStore
	Storage *StorageService
}

func NewQuestionBankService(repo *repository.QuestionBankRepository, storage *StorageService) *QuestionBankService {
	return &QuestionBankService{Repo: repo, Storage: storage}
}

// QuestionRequest is one pre-parsed question tuple from the document parser
// collaborator. CorrectAnswer nil means the question is display-only and
// excluded from variant sampling.
type QuestionRequest struct {
	Text          string  `json:"text" binding:"required"`
	OptionA       string  `json:"optionA" binding:"required"`
	OptionB       string  `json:"optionB" binding:"required"`
	OptionC       *string `json:"optionC"`
	OptionD       *string `json:"optionD"`
	OptionE       *string `json:"optionE"`
	CorrectAnswer *string `json:"correctAnswer"`
}

type QuestionBankRequest struct {
	Subject     string            `json:"subject" binding:"required"`
	Description string            `json:"description"`
	SourceFile  string            `json:"sourceFile"`
	Questions   []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

func buildQuestions(reqs []QuestionRequest) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(reqs))
	for i, q := range reqs {
		if q.CorrectAnswer != nil {
			letter := strings.ToUpper(strings.TrimSpace(*q.CorrectAnswer))
			if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'E' {
				return nil, fmt.Errorf("question %d: correct answer %q is not a letter A-E", i+1, *q.CorrectAnswer)
			}
			q.CorrectAnswer = &letter
		}
		questions = append(questions, model.Question{
			Text:          q.Text,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			OptionE:       q.OptionE,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	return questions, nil
}

func (s *QuestionBankService) CreateBank(schoolID uint, req QuestionBankRequest) (*model.QuestionBank, error) {
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	bank := &model.QuestionBank{
		SchoolID:      schoolID,
		Subject:       req.Subject,
		Description:   req.Description,
		SourceFile:    req.SourceFile,
		QuestionCount: len(questions),
		Questions:     questions,
	}
	if err := s.Repo.Create(bank); err != nil {
		return nil, err
	}
	return bank, nil
}

// ReplaceBank destructively overwrites the bank's questions. Variants built
// from the old content are unaffected; their questionData is a frozen copy.
func (s *QuestionBankService) ReplaceBank(schoolID, id uint, req QuestionBankRequest) (*model.QuestionBank, error) {
	bank, err := s.GetBank(schoolID, id)
	if err != nil {
		return nil, err
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	bank.Subject = req.Subject
	bank.Description = req.Description
	if req.SourceFile != "" {
		bank.SourceFile = req.SourceFile
	}
	if err := s.Repo.Replace(bank, questions); err != nil {
		return nil, err
	}
	return s.GetBank(schoolID, id)
}

func (s *QuestionBankService) GetBank(schoolID, id uint) (*model.QuestionBank, error) {
	bank, err := s.Repo.FindByID(schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrBankNotFound
		}
		return nil, err
	}
	return bank, nil
}

func (s *QuestionBankService) ListBanks(schoolID uint, page, limit int) ([]model.QuestionBank, int64, error) {
	return s.Repo.List(schoolID, page, limit)
}

func (s *QuestionBankService) DeleteBank(schoolID, id uint) error {
	err := s.Repo.Delete(schoolID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrBankNotFound
	}
	return err
}

// UploadSource stores the raw uploaded document the bank was parsed from and
// records its object name on the bank. Parsing itself happens upstream.
func (s *QuestionBankService) UploadSource(ctx context.Context, schoolID, id uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	bank, err := s.GetBank(schoolID, id)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("banks/%d/%s%s", bank.ID, model.GenerateUUID(), filepath.Ext(filename))
	url, err := s.Storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", err
	}

	bank.SourceFile = filename
	bank.Questions = nil
	if err := s.Repo.Update(bank); err != nil {
		return "", err
	}
	return url, nil
}
