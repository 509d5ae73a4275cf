package model

import "gorm.io/datatypes"

// VariantQuestion is one sampled question at its shuffled position within a
// variant subject.
type VariantQuestion struct {
	Position      int     `json:"position"`
	Text          string  `json:"text"`
	OptionA       string  `json:"optionA"`
	OptionB       string  `json:"optionB"`
	OptionC       *string `json:"optionC,omitempty"`
	OptionD       *string `json:"optionD,omitempty"`
	OptionE       *string `json:"optionE,omitempty"`
	CorrectAnswer string  `json:"correctAnswer"`
}

// VariantSubject is the per-subject slice of a variant's questionData. For
// subjects without a linked bank the question list stays empty and AnswerKey
// carries the subject's base key unchanged.
type VariantSubject struct {
	SubjectID         uint              `json:"subjectId"`
	Name              string            `json:"name"`
	Order             int               `json:"order"`
	PointsPerQuestion int               `json:"pointsPerQuestion"`
	Questions         []VariantQuestion `json:"questions,omitempty"`
	AnswerKey         AnswerKey         `json:"answerKey"`
}

// VariantData is the full questionData blob of one variant, subjects in exam
// order.
type VariantData struct {
	Subjects []VariantSubject `json:"subjects"`
}

// ExamVariant is immutable once created. Regeneration always allocates a new
// variant with the next number; existing variants are never rewritten.
// swagger:model ExamVariant
type ExamVariant struct {
	UUIDBase
	SchoolID     uint                            `gorm:"index;not null" json:"schoolId"`
	ExamID       uint                            `gorm:"uniqueIndex:idx_exam_variant_num;type:bigint unsigned" json:"examId"`
	VariantNum   int                             `gorm:"uniqueIndex:idx_exam_variant_num;not null" json:"variantNum"`
	Name         string                          `gorm:"size:100" json:"name"`
	QuestionData datatypes.JSONType[VariantData] `gorm:"type:json" json:"questionData"`
}

func (ExamVariant) TableName() string {
	return "exam_variants"
}
