package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"schoolexam_backend/internal/model"
	"schoolexam_backend/internal/repository"
	"schoolexam_backend/internal/util"
	"schoolexam_backend/pkg/logger"
	"schoolexam_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScoringService struct {
	ExamRepo    examStore
	VariantRepo variantStore
	ResultRepo  resultStore
}

func NewScoringService(examRepo *repository.ExamRepository, variantRepo *repository.VariantRepository, resultRepo *repository.ResultRepository) *ScoringService {
	return &ScoringService{
		ExamRepo:    examRepo,
		VariantRepo: variantRepo,
		ResultRepo:  resultRepo,
	}
}

// ComputeScores counts correct/wrong/empty per subject against the variant's
// key where one exists for that subject order, else the subject's base key.
// Letters compare case-insensitively. A missing subject or question entry in
// answers counts as empty, so partial scans still score.
func ComputeScores(subjects []model.ExamSubject, variantKeys map[string]model.AnswerKey, answers model.AnswerMap) (model.ScoreMap, int, int, float64) {
	scores := model.ScoreMap{}
	totalScore := 0
	totalMax := 0

	for _, subject := range subjects {
		orderKey := strconv.Itoa(subject.Order)

		key := variantKeys[orderKey]
		if len(key) == 0 {
			key = subject.CorrectAnswers.Data()
		}

		subjectAnswers := answers[orderKey]

		breakdown := model.SubjectScore{
			Total:    subject.QuestionCount,
			MaxScore: subject.QuestionCount * subject.PointsPerQuestion,
		}
		for q := 1; q <= subject.QuestionCount; q++ {
			pos := strconv.Itoa(q)
			given, ok := subjectAnswers[pos]
			if !ok || given == "" {
				breakdown.Empty++
				continue
			}
			if strings.EqualFold(given, key[pos]) {
				breakdown.Correct++
			} else {
				breakdown.Wrong++
			}
		}
		breakdown.Score = breakdown.Correct * subject.PointsPerQuestion

		scores[orderKey] = breakdown
		totalScore += breakdown.Score
		totalMax += breakdown.MaxScore
	}

	percentage := 0.0
	if totalMax > 0 {
		percentage = float64(totalScore) / float64(totalMax) * 100
	}

	return scores, totalScore, totalMax, percentage
}

// ScoreSubmission recomputes a student's result from raw answers and upserts
// it. When variantID points at a deleted variant, scoring degrades to the
// exam's base answer keys rather than failing; marking stays available even
// after variants are pruned.
func (s *ScoringService) ScoreSubmission(schoolID, examID, studentID uint, answers model.AnswerMap, source model.ResultSource, variantID *string, notes string) (*model.ExamResult, error) {
	exam, err := s.ExamRepo.FindByID(schoolID, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}

	variantKeys := map[string]model.AnswerKey{}
	if variantID != nil && *variantID != "" {
		variant, err := s.VariantRepo.FindByID(schoolID, *variantID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			logger.Log.Warn("variant missing at scoring time, falling back to base keys",
				zap.String("variantId", *variantID),
				zap.Uint("examId", examID),
			)
		} else {
			for _, vs := range variant.QuestionData.Data().Subjects {
				variantKeys[strconv.Itoa(vs.Order)] = vs.AnswerKey
			}
		}
	}

	if answers == nil {
		answers = model.AnswerMap{}
	}
	if source == "" {
		source = model.SourceManual
	}

	scores, totalScore, totalMax, percentage := ComputeScores(exam.Subjects, variantKeys, answers)

	result := &model.ExamResult{
		SchoolID:   schoolID,
		ExamID:     examID,
		StudentID:  studentID,
		VariantID:  variantID,
		Answers:    datatypes.NewJSONType(answers),
		Scores:     datatypes.NewJSONType(scores),
		TotalScore: totalScore,
		TotalMax:   totalMax,
		Percentage: percentage,
		Source:     source,
		Notes:      notes,
	}

	if err := s.ResultRepo.Upsert(result); err != nil {
		return nil, err
	}
	monitoring.SubmissionsScored.WithLabelValues(string(source)).Inc()

	// The upsert may have hit an existing row; return the stored one.
	return s.ResultRepo.FindByExamAndStudent(schoolID, examID, studentID)
}

// BulkSubmission is one entry of a batch scoring request.
type BulkSubmission struct {
	StudentID uint               `json:"studentId" binding:"required"`
	Answers   model.AnswerMap    `json:"answers"`
	Source    model.ResultSource `json:"source"`
	VariantID *string            `json:"variantId,omitempty"`
	Notes     string             `json:"notes"`
}

// BulkScoreResult reports a batch outcome; successes are never rolled back.
type BulkScoreResult struct {
	Scored int      `json:"scored"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// ScoreBulk applies ScoreSubmission independently per entry. Partial failure
// is reported, not undone.
func (s *ScoringService) ScoreBulk(schoolID, examID uint, submissions []BulkSubmission) *BulkScoreResult {
	out := &BulkScoreResult{}
	for _, sub := range submissions {
		if _, err := s.ScoreSubmission(schoolID, examID, sub.StudentID, sub.Answers, sub.Source, sub.VariantID, sub.Notes); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, fmt.Sprintf("student %d: %v", sub.StudentID, err))
			continue
		}
		out.Scored++
	}
	return out
}

func (s *ScoringService) GetResult(schoolID, examID, studentID uint) (*model.ExamResult, error) {
	result, err := s.ResultRepo.FindByExamAndStudent(schoolID, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResultNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *ScoringService) ListResults(schoolID, examID uint) ([]model.ExamResult, error) {
	if _, err := s.ExamRepo.FindByID(schoolID, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return s.ResultRepo.ListByExam(schoolID, examID)
}
