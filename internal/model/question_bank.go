package model

// QuestionBank is a school-owned pool of multiple-choice questions for one
// subject. Replacing a bank deletes and recreates its questions; there is no
// versioning.
// swagger:model QuestionBank
type QuestionBank struct {
	BaseModel
	SchoolID      uint       `gorm:"index;not null" json:"schoolId"`
	Subject       string     `gorm:"size:100;not null" json:"subject"`
	Description   string     `gorm:"type:text" json:"description"`
	SourceFile    string     `gorm:"size:255" json:"sourceFile"`
	QuestionCount int        `gorm:"default:0" json:"questionCount"`
	Questions     []Question `gorm:"foreignKey:QuestionBankID" json:"questions,omitempty"`
}

func (QuestionBank) TableName() string {
	return "question_banks"
}

// Question holds 2-5 option texts. A and B are mandatory. Questions without a
// correct-answer letter are kept for display but never sampled into variants.
// swagger:model Question
type Question struct {
	BaseModel
	QuestionBankID uint    `gorm:"index;type:bigint unsigned" json:"questionBankId"`
	Text           string  `gorm:"type:text;not null" json:"text"`
	OptionA        string  `gorm:"type:text;not null" json:"optionA"`
	OptionB        string  `gorm:"type:text;not null" json:"optionB"`
	OptionC        *string `gorm:"type:text" json:"optionC,omitempty"`
	OptionD        *string `gorm:"type:text" json:"optionD,omitempty"`
	OptionE        *string `gorm:"type:text" json:"optionE,omitempty"`
	CorrectAnswer  *string `gorm:"size:1" json:"correctAnswer,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
