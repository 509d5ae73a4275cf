package repository

import (
	"schoolexam_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

// FindByID loads the exam with its subjects in `order` sequence, which every
// engine downstream relies on.
func (r *ExamRepository) FindByID(schoolID, id uint) (*model.Exam, error) {
	var e model.Exam
	err := r.DB.Preload("Subjects", func(db *gorm.DB) *gorm.DB {
		return db.Order("`order` asc, id asc")
	}).Where("school_id = ?", schoolID).First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExamRepository) List(schoolID uint, page, limit int) ([]model.Exam, int64, error) {
	var exams []model.Exam
	var total int64
	query := r.DB.Model(&model.Exam{}).Where("school_id = ?", schoolID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&exams).Error
	return exams, total, err
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

// UpdateStatus sets any status directly; there is no enforced transition graph.
func (r *ExamRepository) UpdateStatus(schoolID, id uint, status model.ExamStatus) error {
	res := r.DB.Model(&model.Exam{}).
		Where("id = ? AND school_id = ?", id, schoolID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ExamRepository) Delete(schoolID, id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("school_id = ?", schoolID).Delete(&model.Exam{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("exam_id = ?", id).Delete(&model.ExamSubject{}).Error
	})
}

func (r *ExamRepository) ReplaceSubjects(examID uint, subjects []model.ExamSubject) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("exam_id = ?", examID).Delete(&model.ExamSubject{}).Error; err != nil {
			return err
		}
		for i := range subjects {
			subjects[i].ExamID = examID
		}
		if len(subjects) == 0 {
			return nil
		}
		return tx.Create(&subjects).Error
	})
}
