package repository

import (
	"schoolexam_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionBankRepository struct {
	DB *gorm.DB
}

func NewQuestionBankRepository(db *gorm.DB) *QuestionBankRepository {
	return &QuestionBankRepository{DB: db}
}

func (r *QuestionBankRepository) Create(bank *model.QuestionBank) error {
	return r.DB.Create(bank).Error
}

func (r *QuestionBankRepository) FindByID(schoolID, id uint) (*model.QuestionBank, error) {
	var b model.QuestionBank
	err := r.DB.Preload("Questions").Where("school_id = ?", schoolID).First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *QuestionBankRepository) Update(bank *model.QuestionBank) error {
	return r.DB.Save(bank).Error
}

func (r *QuestionBankRepository) List(schoolID uint, page, limit int) ([]model.QuestionBank, int64, error) {
	var banks []model.QuestionBank
	var total int64
	query := r.DB.Model(&model.QuestionBank{}).Where("school_id = ?", schoolID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&banks).Error
	return banks, total, err
}

// Replace overwrites the bank's metadata and recreates all of its questions in
// one transaction. Banks are not versioned; the old questions are gone.
func (r *QuestionBankRepository) Replace(bank *model.QuestionBank, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("question_bank_id = ?", bank.ID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuestionBankID = bank.ID
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		bank.QuestionCount = len(questions)
		bank.Questions = nil
		return tx.Save(bank).Error
	})
}

func (r *QuestionBankRepository) Delete(schoolID, id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("school_id = ?", schoolID).Delete(&model.QuestionBank{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("question_bank_id = ?", id).Delete(&model.Question{}).Error
	})
}

// ListEligibleQuestions returns only questions with a non-null correct answer;
// everything else is invisible to variant generation.
func (r *QuestionBankRepository) ListEligibleQuestions(bankID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("question_bank_id = ? AND correct_answer IS NOT NULL", bankID).
		Order("id asc").Find(&qs).Error
	return qs, err
}
