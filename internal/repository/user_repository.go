package repository

import (
	"schoolexam_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var u model.User
	err := r.DB.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var u model.User
	if err := r.DB.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindStudents returns the users among ids that are students of the school.
// Unknown or out-of-school ids are simply absent from the result.
func (r *UserRepository) FindStudents(schoolID uint, ids []uint) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("school_id = ? AND role = ? AND id IN ?", schoolID, model.Student, ids).Find(&users).Error
	return users, err
}
