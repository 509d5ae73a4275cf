package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"schoolexam_backend/internal/model"
	"schoolexam_backend/internal/repository"
	"schoolexam_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamService struct {
	Repo     *repository.ExamRepository
	BankRepo *repository.QuestionBankRepository
}

func NewExamService(repo *repository.ExamRepository, bankRepo *repository.QuestionBankRepository) *ExamService {
	return &ExamService{Repo: repo, BankRepo: bankRepo}
}

type ExamSubjectRequest struct {
	Name              string          `json:"name" binding:"required"`
	QuestionCount     int             `json:"questionCount" binding:"required,min=1"`
	PointsPerQuestion int             `json:"pointsPerQuestion" binding:"required,min=1"`
	CorrectAnswers    model.AnswerKey `json:"correctAnswers"`
	Order             int             `json:"order"`
	QuestionBankID    *uint           `json:"questionBankId"`
}

type ExamRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	ExamDate    *time.Time           `json:"examDate"`
	Duration    int                  `json:"duration"`
	Subjects    []ExamSubjectRequest `json:"subjects" binding:"required,min=1,dive"`
}

// validateSubject checks the base-key invariant: when a key is supplied it
// must cover exactly positions 1..QuestionCount, one letter each.
func validateSubject(schoolID uint, req ExamSubjectRequest, bankRepo *repository.QuestionBankRepository) error {
	if len(req.CorrectAnswers) > 0 {
		if len(req.CorrectAnswers) != req.QuestionCount {
			return fmt.Errorf("subject %q: answer key has %d entries, expected %d", req.Name, len(req.CorrectAnswers), req.QuestionCount)
		}
		for pos := 1; pos <= req.QuestionCount; pos++ {
			letter, ok := req.CorrectAnswers[strconv.Itoa(pos)]
			if !ok || letter == "" {
				return fmt.Errorf("subject %q: answer key missing position %d", req.Name, pos)
			}
		}
	}
	if req.QuestionBankID != nil {
		if _, err := bankRepo.FindByID(schoolID, *req.QuestionBankID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrBankNotFound
			}
			return err
		}
	}
	return nil
}

func (s *ExamService) CreateExam(schoolID uint, req ExamRequest) (*model.Exam, error) {
	subjects := make([]model.ExamSubject, 0, len(req.Subjects))
	for i, sub := range req.Subjects {
		if err := validateSubject(schoolID, sub, s.BankRepo); err != nil {
			return nil, err
		}
		order := sub.Order
		if order == 0 {
			order = i + 1
		}
		key := sub.CorrectAnswers
		if key == nil {
			key = model.AnswerKey{}
		}
		subjects = append(subjects, model.ExamSubject{
			Name:              sub.Name,
			QuestionCount:     sub.QuestionCount,
			PointsPerQuestion: sub.PointsPerQuestion,
			CorrectAnswers:    datatypes.NewJSONType(key),
			Order:             order,
			QuestionBankID:    sub.QuestionBankID,
		})
	}

	exam := &model.Exam{
		SchoolID:    schoolID,
		Title:       req.Title,
		Description: req.Description,
		ExamDate:    req.ExamDate,
		Duration:    req.Duration,
		Status:      model.ExamStatusDraft,
		Subjects:    subjects,
	}
	if err := s.Repo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) GetExam(schoolID, id uint) (*model.Exam, error) {
	exam, err := s.Repo.FindByID(schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) ListExams(schoolID uint, page, limit int) ([]model.Exam, int64, error) {
	return s.Repo.List(schoolID, page, limit)
}

func (s *ExamService) UpdateExam(schoolID, id uint, req ExamRequest) (*model.Exam, error) {
	exam, err := s.GetExam(schoolID, id)
	if err != nil {
		return nil, err
	}

	subjects := make([]model.ExamSubject, 0, len(req.Subjects))
	for i, sub := range req.Subjects {
		if err := validateSubject(schoolID, sub, s.BankRepo); err != nil {
			return nil, err
		}
		order := sub.Order
		if order == 0 {
			order = i + 1
		}
		key := sub.CorrectAnswers
		if key == nil {
			key = model.AnswerKey{}
		}
		subjects = append(subjects, model.ExamSubject{
			Name:              sub.Name,
			QuestionCount:     sub.QuestionCount,
			PointsPerQuestion: sub.PointsPerQuestion,
			CorrectAnswers:    datatypes.NewJSONType(key),
			Order:             order,
			QuestionBankID:    sub.QuestionBankID,
		})
	}

	exam.Title = req.Title
	exam.Description = req.Description
	exam.ExamDate = req.ExamDate
	exam.Duration = req.Duration
	exam.Subjects = nil
	if err := s.Repo.Update(exam); err != nil {
		return nil, err
	}
	if err := s.Repo.ReplaceSubjects(exam.ID, subjects); err != nil {
		return nil, err
	}
	return s.GetExam(schoolID, id)
}

// UpdateStatus accepts any of the four statuses from any current status;
// there is no transition graph to enforce.
func (s *ExamService) UpdateStatus(schoolID, id uint, status model.ExamStatus) error {
	switch status {
	case model.ExamStatusDraft, model.ExamStatusPublished, model.ExamStatusCompleted, model.ExamStatusArchived:
	default:
		return fmt.Errorf("unknown exam status %q", status)
	}
	err := s.Repo.UpdateStatus(schoolID, id, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrExamNotFound
	}
	return err
}

func (s *ExamService) DeleteExam(schoolID, id uint) error {
	err := s.Repo.Delete(schoolID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrExamNotFound
	}
	return err
}
