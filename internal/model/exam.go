package model

import (
	"time"

	"gorm.io/datatypes"
)

type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusCompleted ExamStatus = "COMPLETED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// AnswerKey maps a question position ("1".."N") to its correct letter.
type AnswerKey map[string]string

// swagger:model Exam
type Exam struct {
	BaseModel
	SchoolID    uint          `gorm:"index;not null" json:"schoolId"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	ExamDate    *time.Time    `json:"examDate,omitempty"`
	Duration    int           `gorm:"default:0" json:"duration"` // Minutes
	Status      ExamStatus    `gorm:"size:20;default:'DRAFT'" json:"status"`
	Subjects    []ExamSubject `gorm:"foreignKey:ExamID" json:"subjects,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamSubject carries the fixed base answer key used for manual-entry exams and
// as the scoring fallback when no variant applies. CorrectAnswers is sized to
// QuestionCount with contiguous positions 1..N.
// swagger:model ExamSubject
type ExamSubject struct {
	BaseModel
	ExamID            uint                             `gorm:"index;type:bigint unsigned" json:"examId"`
	Name              string                           `gorm:"size:100;not null" json:"name"`
	QuestionCount     int                              `gorm:"not null" json:"questionCount"`
	PointsPerQuestion int                              `gorm:"default:1" json:"pointsPerQuestion"`
	CorrectAnswers    datatypes.JSONType[AnswerKey]    `gorm:"type:json" json:"correctAnswers"`
	Order             int                              `gorm:"default:0" json:"order"`
	QuestionBankID    *uint                            `gorm:"index;type:bigint unsigned" json:"questionBankId,omitempty"`
	QuestionBank      *QuestionBank                    `gorm:"foreignKey:QuestionBankID" json:"questionBank,omitempty"`
}

func (ExamSubject) TableName() string {
	return "exam_subjects"
}
