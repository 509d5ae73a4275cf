package model

import "gorm.io/datatypes"

type ResultSource string

const (
	SourceManual ResultSource = "MANUAL"
	SourceScan   ResultSource = "SCAN"
)

// AnswerMap nests subject order (as a string key) -> question number -> chosen
// letter. A missing subject key scores as entirely empty for that subject.
type AnswerMap map[string]map[string]string

// SubjectScore is the computed breakdown for one subject.
type SubjectScore struct {
	Correct  int `json:"correct"`
	Wrong    int `json:"wrong"`
	Empty    int `json:"empty"`
	Score    int `json:"score"`
	Total    int `json:"total"`
	MaxScore int `json:"maxScore"`
}

// ScoreMap keys subject order (as a string) to its breakdown.
type ScoreMap map[string]SubjectScore

// ExamResult is unique per (ExamID, StudentID), enforced by upsert. A row with
// empty answers and zero scores is a valid placeholder recording a variant
// assignment before the student has been marked. VariantID may dangle after a
// variant delete; scoring then falls back to the exam's base answer keys.
// swagger:model ExamResult
type ExamResult struct {
	UUIDBase
	SchoolID   uint                          `gorm:"index;not null" json:"schoolId"`
	ExamID     uint                          `gorm:"uniqueIndex:idx_exam_student;type:bigint unsigned" json:"examId"`
	StudentID  uint                          `gorm:"uniqueIndex:idx_exam_student;type:bigint unsigned" json:"studentId"`
	Student    *User                         `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	VariantID  *string                       `gorm:"type:varchar(36);index" json:"variantId,omitempty"`
	Answers    datatypes.JSONType[AnswerMap] `gorm:"type:json" json:"answers"`
	Scores     datatypes.JSONType[ScoreMap]  `gorm:"type:json" json:"scores"`
	TotalScore int                           `gorm:"default:0" json:"totalScore"`
	TotalMax   int                           `gorm:"default:0" json:"totalMax"`
	Percentage float64                       `gorm:"default:0" json:"percentage"`
	Source     ResultSource                  `gorm:"size:10;default:'MANUAL'" json:"source"`
	Notes      string                        `gorm:"type:text" json:"notes"`
}

func (ExamResult) TableName() string {
	return "exam_results"
}
