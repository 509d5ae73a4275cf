package repository

import (
	"schoolexam_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

// Upsert writes a full scored result. On (exam_id, student_id) conflict every
// score-bearing column is overwritten; the store's unique index makes this
// atomic, so concurrent submissions cannot produce duplicate rows.
func (r *ResultRepository) Upsert(result *model.ExamResult) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"variant_id", "answers", "scores",
			"total_score", "total_max", "percentage",
			"source", "notes", "updated_at",
		}),
	}).Create(result).Error
}

// UpsertAssignment records a variant link. A fresh row is a zeroed placeholder;
// on conflict only variant_id moves, so answers and scores entered before a
// re-roll survive.
func (r *ResultRepository) UpsertAssignment(result *model.ExamResult) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"variant_id", "updated_at"}),
	}).Create(result).Error
}

func (r *ResultRepository) FindByExamAndStudent(schoolID, examID, studentID uint) (*model.ExamResult, error) {
	var res model.ExamResult
	err := r.DB.Where("school_id = ? AND exam_id = ? AND student_id = ?", schoolID, examID, studentID).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResultRepository) ListByExam(schoolID, examID uint) ([]model.ExamResult, error) {
	var results []model.ExamResult
	err := r.DB.Preload("Student").
		Where("school_id = ? AND exam_id = ?", schoolID, examID).
		Order("percentage desc, student_id asc").
		Find(&results).Error
	return results, err
}
