package model

type UserRole string

const (
	Admin   UserRole = "admin"
	Teacher UserRole = "teacher"
	Student UserRole = "student"
)

// swagger:model User
type User struct {
	BaseModel
	SchoolID uint     `gorm:"index;not null" json:"schoolId"`
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:255;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'student'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
