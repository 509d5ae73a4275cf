package repository

import (
	"schoolexam_backend/internal/model"

	"gorm.io/gorm"
)

type VariantRepository struct {
	DB *gorm.DB
}

func NewVariantRepository(db *gorm.DB) *VariantRepository {
	return &VariantRepository{DB: db}
}

// Create fails with a duplicate-key error if (exam_id, variant_num) already
// exists; the caller computes the next number first and retries on a lost race.
func (r *VariantRepository) Create(variant *model.ExamVariant) error {
	return r.DB.Create(variant).Error
}

// NextVariantNumber is a fresh MAX query at call time, never cached state. The
// unique index is the only race guard.
func (r *VariantRepository) NextVariantNumber(examID uint) (int, error) {
	var max *int
	err := r.DB.Model(&model.ExamVariant{}).
		Where("exam_id = ?", examID).
		Select("MAX(variant_num)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

func (r *VariantRepository) FindByID(schoolID uint, id string) (*model.ExamVariant, error) {
	var v model.ExamVariant
	err := r.DB.Where("id = ? AND school_id = ?", id, schoolID).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VariantRepository) ListByExam(examID uint) ([]model.ExamVariant, error) {
	var vs []model.ExamVariant
	err := r.DB.Where("exam_id = ?", examID).Order("variant_num asc").Find(&vs).Error
	return vs, err
}

// Delete is a hard delete with no cascade protection. Results referencing the
// variant keep their dangling variant_id; scoring tolerates that.
func (r *VariantRepository) Delete(schoolID uint, id string) error {
	res := r.DB.Unscoped().Where("id = ? AND school_id = ?", id, schoolID).Delete(&model.ExamVariant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
