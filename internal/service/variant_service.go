package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"schoolexam_backend/internal/model"
	"schoolexam_backend/internal/repository"
	"schoolexam_backend/internal/util"
	"schoolexam_backend/pkg/logger"
	"schoolexam_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxVariantCount    = 20
	variantCacheKeyFmt = "variant:data:%s"
	variantCacheExpiry = 24 * time.Hour
)

type VariantService struct {
	ExamRepo   examStore
	BankRepo   questionSource
	Repo       variantStore
	ResultRepo resultStore
	UserRepo   rosterStore
	Redis      *redis.Client
}

func NewVariantService(examRepo *repository.ExamRepository, bankRepo *repository.QuestionBankRepository, repo *repository.VariantRepository, resultRepo *repository.ResultRepository, userRepo *repository.UserRepository, rdb *redis.Client) *VariantService {
	return &VariantService{
		ExamRepo:   examRepo,
		BankRepo:   bankRepo,
		Repo:       repo,
		ResultRepo: resultRepo,
		UserRepo:   userRepo,
		Redis:      rdb,
	}
}

// BuildVariantData assembles one variant's questionData for the given
// subjects. eligible maps a bank id to its answerable questions. Subjects with
// a non-empty bank get a shuffled sample of up to QuestionCount questions;
// when the bank holds fewer, the sample is everything available and under-fill
// is not an error. Subjects without a usable bank carry their base answer key
// unchanged and no question list.
func BuildVariantData(subjects []model.ExamSubject, eligible map[uint][]model.Question) model.VariantData {
	data := model.VariantData{Subjects: make([]model.VariantSubject, 0, len(subjects))}

	for _, subject := range subjects {
		vs := model.VariantSubject{
			SubjectID:         subject.ID,
			Name:              subject.Name,
			Order:             subject.Order,
			PointsPerQuestion: subject.PointsPerQuestion,
			AnswerKey:         model.AnswerKey{},
		}

		var pool []model.Question
		if subject.QuestionBankID != nil {
			pool = eligible[*subject.QuestionBankID]
		}

		if len(pool) > 0 {
			shuffled := util.Shuffle(pool)
			take := subject.QuestionCount
			if take > len(shuffled) {
				take = len(shuffled)
			}
			vs.Questions = make([]model.VariantQuestion, 0, take)
			for i := 0; i < take; i++ {
				q := shuffled[i]
				correct := ""
				if q.CorrectAnswer != nil {
					correct = *q.CorrectAnswer
				}
				pos := i + 1
				vs.Questions = append(vs.Questions, model.VariantQuestion{
					Position:      pos,
					Text:          q.Text,
					OptionA:       q.OptionA,
					OptionB:       q.OptionB,
					OptionC:       q.OptionC,
					OptionD:       q.OptionD,
					OptionE:       q.OptionE,
					CorrectAnswer: correct,
				})
				vs.AnswerKey[strconv.Itoa(pos)] = correct
			}
		} else {
			// Manual-entry subject: a pre-printed answer sheet exists, only
			// the base key travels with the variant.
			base := subject.CorrectAnswers.Data()
			for pos := 1; pos <= subject.QuestionCount; pos++ {
				key := strconv.Itoa(pos)
				if letter, ok := base[key]; ok {
					vs.AnswerKey[key] = letter
				}
			}
		}

		data.Subjects = append(data.Subjects, vs)
	}

	return data
}

// Assignment links one student to one variant.
type Assignment struct {
	StudentID uint   `json:"studentId"`
	VariantID string `json:"variantId"`
}

// PlanAssignments distributes students across variants round-robin in input
// order: students[i] -> variants[i mod len(variants)]. Deterministic, even
// within one student per variant.
func PlanAssignments(studentIDs []uint, variantIDs []string) []Assignment {
	if len(variantIDs) == 0 {
		return nil
	}
	plan := make([]Assignment, 0, len(studentIDs))
	for i, sid := range studentIDs {
		plan = append(plan, Assignment{
			StudentID: sid,
			VariantID: variantIDs[i%len(variantIDs)],
		})
	}
	return plan
}

type AssignVariantsResult struct {
	Variants      []model.ExamVariant `json:"variants"`
	AssignedCount int                 `json:"assignedCount"`
}

// AssignVariants generates variantCount fresh variants for the exam and
// distributes the roster across them. Placeholder results record each link;
// a student's previously entered answers and scores are left untouched, only
// the variant link moves.
func (s *VariantService) AssignVariants(schoolID, examID uint, variantCount int, studentIDs []uint) (*AssignVariantsResult, error) {
	if variantCount < 1 || variantCount > maxVariantCount {
		return nil, util.ErrVariantCount
	}
	if len(studentIDs) == 0 {
		return nil, util.ErrEmptyRoster
	}

	// Keep only ids that are students of this school, in request order so the
	// round-robin stays deterministic.
	students, err := s.UserRepo.FindStudents(schoolID, studentIDs)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(students))
	for _, u := range students {
		known[u.ID] = true
	}
	roster := make([]uint, 0, len(studentIDs))
	for _, sid := range studentIDs {
		if known[sid] {
			roster = append(roster, sid)
		}
	}
	if len(roster) == 0 {
		return nil, util.ErrEmptyRoster
	}

	exam, err := s.ExamRepo.FindByID(schoolID, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}

	eligible, err := s.loadEligibleQuestions(exam.Subjects)
	if err != nil {
		return nil, err
	}

	startNum, err := s.Repo.NextVariantNumber(examID)
	if err != nil {
		return nil, err
	}

	variants := make([]model.ExamVariant, 0, variantCount)
	for i := 0; i < variantCount; i++ {
		num := startNum + i
		variant := model.ExamVariant{
			SchoolID:     schoolID,
			ExamID:       examID,
			VariantNum:   num,
			Name:         fmt.Sprintf("Variant %d", num),
			QuestionData: datatypes.NewJSONType(BuildVariantData(exam.Subjects, eligible)),
		}
		if err := s.Repo.Create(&variant); err != nil {
			return nil, err
		}
		monitoring.VariantsGenerated.Inc()
		variants = append(variants, variant)
	}

	variantIDs := make([]string, len(variants))
	for i, v := range variants {
		variantIDs[i] = v.ID
	}

	assigned := 0
	for _, a := range PlanAssignments(roster, variantIDs) {
		vid := a.VariantID
		placeholder := model.ExamResult{
			SchoolID:  schoolID,
			ExamID:    examID,
			StudentID: a.StudentID,
			VariantID: &vid,
			Answers:   datatypes.NewJSONType(model.AnswerMap{}),
			Scores:    datatypes.NewJSONType(model.ScoreMap{}),
		}
		if err := s.ResultRepo.UpsertAssignment(&placeholder); err != nil {
			return nil, err
		}
		assigned++
	}

	logger.Log.Info("variants assigned",
		zap.Uint("examId", examID),
		zap.Int("variantCount", variantCount),
		zap.Int("assigned", assigned),
	)

	return &AssignVariantsResult{Variants: variants, AssignedCount: assigned}, nil
}

// ManualAssignment links a student to an already generated variant.
type ManualAssignment struct {
	StudentID uint   `json:"studentId" binding:"required"`
	VariantID string `json:"variantId" binding:"required"`
}

// SaveManualAssignments links students to existing variants without generating
// anything, with the same preserve-scores upsert semantics as AssignVariants.
// Ids that are not students of the school are skipped, same as AssignVariants.
func (s *VariantService) SaveManualAssignments(schoolID, examID uint, pairs []ManualAssignment) (int, error) {
	if _, err := s.ExamRepo.FindByID(schoolID, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrExamNotFound
		}
		return 0, err
	}

	ids := make([]uint, 0, len(pairs))
	for _, pair := range pairs {
		ids = append(ids, pair.StudentID)
	}
	students, err := s.UserRepo.FindStudents(schoolID, ids)
	if err != nil {
		return 0, err
	}
	known := make(map[uint]bool, len(students))
	for _, u := range students {
		known[u.ID] = true
	}
	if len(known) == 0 {
		return 0, util.ErrEmptyRoster
	}

	assigned := 0
	for _, pair := range pairs {
		if !known[pair.StudentID] {
			continue
		}
		variant, err := s.Repo.FindByID(schoolID, pair.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return assigned, util.ErrVariantNotFound
			}
			return assigned, err
		}
		if variant.ExamID != examID {
			return assigned, util.ErrVariantNotFound
		}

		vid := pair.VariantID
		placeholder := model.ExamResult{
			SchoolID:  schoolID,
			ExamID:    examID,
			StudentID: pair.StudentID,
			VariantID: &vid,
			Answers:   datatypes.NewJSONType(model.AnswerMap{}),
			Scores:    datatypes.NewJSONType(model.ScoreMap{}),
		}
		if err := s.ResultRepo.UpsertAssignment(&placeholder); err != nil {
			return assigned, err
		}
		assigned++
	}
	return assigned, nil
}

func (s *VariantService) ListVariants(schoolID, examID uint) ([]model.ExamVariant, error) {
	if _, err := s.ExamRepo.FindByID(schoolID, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return s.Repo.ListByExam(examID)
}

// GetVariant serves one variant's full questionData for booklet rendering,
// read-through cached in redis. Variants are immutable, so the cache only
// needs invalidation on delete.
func (s *VariantService) GetVariant(ctx context.Context, schoolID uint, id string) (*model.ExamVariant, error) {
	cacheKey := fmt.Sprintf(variantCacheKeyFmt, id)

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached model.ExamVariant
			if err := json.Unmarshal([]byte(val), &cached); err == nil && cached.SchoolID == schoolID {
				return &cached, nil
			}
		}
	}

	variant, err := s.Repo.FindByID(schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVariantNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(variant); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, payload, variantCacheExpiry).Err(); err != nil {
				logger.Log.Warn("failed to cache variant", zap.String("variantId", id), zap.Error(err))
			}
		}
	}

	return variant, nil
}

// DeleteVariant hard-deletes; results that reference the variant keep their
// dangling link and fall back to base keys at scoring time.
func (s *VariantService) DeleteVariant(ctx context.Context, schoolID uint, id string) error {
	if err := s.Repo.Delete(schoolID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrVariantNotFound
		}
		return err
	}
	if s.Redis != nil {
		s.Redis.Del(ctx, fmt.Sprintf(variantCacheKeyFmt, id))
	}
	return nil
}

func (s *VariantService) loadEligibleQuestions(subjects []model.ExamSubject) (map[uint][]model.Question, error) {
	eligible := make(map[uint][]model.Question)
	for _, subject := range subjects {
		if subject.QuestionBankID == nil {
			continue
		}
		bankID := *subject.QuestionBankID
		if _, done := eligible[bankID]; done {
			continue
		}
		qs, err := s.BankRepo.ListEligibleQuestions(bankID)
		if err != nil {
			return nil, err
		}
		eligible[bankID] = qs
	}
	return eligible, nil
}
