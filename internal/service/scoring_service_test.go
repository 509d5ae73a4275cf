package service

import (
	"testing"

	"schoolexam_backend/internal/model"

	"gorm.io/datatypes"
)

func twoSubjectExam() []model.ExamSubject {
	return []model.ExamSubject{
		{
			BaseModel:         model.BaseModel{ID: 1},
			Name:              "Mathematics",
			QuestionCount:     4,
			PointsPerQuestion: 5,
			Order:             1,
			CorrectAnswers:    datatypes.NewJSONType(model.AnswerKey{"1": "A", "2": "B", "3": "C", "4": "D"}),
		},
		{
			BaseModel:         model.BaseModel{ID: 2},
			Name:              "Language",
			QuestionCount:     2,
			PointsPerQuestion: 10,
			Order:             2,
			CorrectAnswers:    datatypes.NewJSONType(model.AnswerKey{"1": "E", "2": "A"}),
		},
	}
}

func TestComputeScores_AllCorrect(t *testing.T) {
	subjects := twoSubjectExam()
	answers := model.AnswerMap{
		"1": {"1": "A", "2": "B", "3": "C", "4": "D"},
		"2": {"1": "E", "2": "A"},
	}

	scores, totalScore, totalMax, percentage := ComputeScores(subjects, nil, answers)

	if totalMax != 40 {
		t.Fatalf("totalMax: got %d, want 40", totalMax)
	}
	if totalScore != 40 {
		t.Fatalf("totalScore: got %d, want 40", totalScore)
	}
	if percentage != 100 {
		t.Fatalf("percentage: got %f, want 100", percentage)
	}
	if s := scores["1"]; s.Correct != 4 || s.Wrong != 0 || s.Empty != 0 || s.Score != 20 {
		t.Fatalf("subject 1 breakdown: %+v", s)
	}
	if s := scores["2"]; s.Correct != 2 || s.Score != 20 || s.MaxScore != 20 {
		t.Fatalf("subject 2 breakdown: %+v", s)
	}
}

func TestComputeScores_MixedOutcomes(t *testing.T) {
	subjects := twoSubjectExam()
	answers := model.AnswerMap{
		"1": {"1": "A", "2": "C", "4": ""},
		"2": {"1": "E"},
	}

	scores, totalScore, totalMax, _ := ComputeScores(subjects, nil, answers)

	s1 := scores["1"]
	if s1.Correct != 1 || s1.Wrong != 1 || s1.Empty != 2 {
		t.Fatalf("subject 1 breakdown: %+v", s1)
	}
	if s1.Correct+s1.Wrong+s1.Empty != s1.Total {
		t.Fatalf("subject 1 counts do not sum to total: %+v", s1)
	}

	s2 := scores["2"]
	if s2.Correct != 1 || s2.Empty != 1 {
		t.Fatalf("subject 2 breakdown: %+v", s2)
	}

	if want := 1*5 + 1*10; totalScore != want {
		t.Fatalf("totalScore: got %d, want %d", totalScore, want)
	}
	if totalScore > totalMax {
		t.Fatalf("totalScore %d exceeds totalMax %d", totalScore, totalMax)
	}
}

func TestComputeScores_CaseInsensitiveLetters(t *testing.T) {
	subjects := twoSubjectExam()
	answers := model.AnswerMap{
		"1": {"1": "a", "2": "b", "3": "c", "4": "d"},
		"2": {"1": "e", "2": "a"},
	}

	_, totalScore, totalMax, _ := ComputeScores(subjects, nil, answers)

	if totalScore != totalMax {
		t.Fatalf("lowercase answers must score full marks: got %d of %d", totalScore, totalMax)
	}
}

func TestComputeScores_VariantKeyPreferred(t *testing.T) {
	subjects := twoSubjectExam()
	// Variant shuffled subject 1; its key disagrees with the base key.
	variantKeys := map[string]model.AnswerKey{
		"1": {"1": "D", "2": "C", "3": "B", "4": "A"},
	}
	answers := model.AnswerMap{
		"1": {"1": "D", "2": "C", "3": "B", "4": "A"},
		"2": {"1": "E", "2": "A"},
	}

	_, totalScore, totalMax, _ := ComputeScores(subjects, variantKeys, answers)

	if totalScore != totalMax {
		t.Fatalf("variant key must win over base key: got %d of %d", totalScore, totalMax)
	}
}

func TestComputeScores_MissingVariantSubjectFallsBack(t *testing.T) {
	subjects := twoSubjectExam()
	// The variant only covers subject 1; subject 2 scores against its base key.
	variantKeys := map[string]model.AnswerKey{
		"1": {"1": "B", "2": "B", "3": "B", "4": "B"},
	}
	answers := model.AnswerMap{
		"1": {"1": "B", "2": "B", "3": "B", "4": "B"},
		"2": {"1": "E", "2": "A"},
	}

	_, totalScore, totalMax, _ := ComputeScores(subjects, variantKeys, answers)

	if totalScore != totalMax {
		t.Fatalf("subject without variant key must use base key: got %d of %d", totalScore, totalMax)
	}
}

func TestComputeScores_MissingSubjectAnswersCountEmpty(t *testing.T) {
	subjects := twoSubjectExam()
	answers := model.AnswerMap{
		"1": {"1": "A", "2": "B", "3": "C", "4": "D"},
		// subject 2 missing entirely, as with a partially scanned sheet
	}

	scores, totalScore, _, _ := ComputeScores(subjects, nil, answers)

	s2 := scores["2"]
	if s2.Empty != 2 || s2.Correct != 0 || s2.Wrong != 0 {
		t.Fatalf("missing subject must count all empty: %+v", s2)
	}
	if totalScore != 20 {
		t.Fatalf("totalScore: got %d, want 20", totalScore)
	}
}

func TestComputeScores_NoSubjects(t *testing.T) {
	scores, totalScore, totalMax, percentage := ComputeScores(nil, nil, model.AnswerMap{})

	if len(scores) != 0 || totalScore != 0 || totalMax != 0 {
		t.Fatalf("empty exam must score zero: %v %d %d", scores, totalScore, totalMax)
	}
	if percentage != 0 {
		t.Fatalf("zero totalMax must give 0 percent, got %f", percentage)
	}
}

func TestComputeScores_TotalMaxFormula(t *testing.T) {
	tests := []struct {
		name     string
		subjects []model.ExamSubject
		wantMax  int
	}{
		{
			name: "single subject",
			subjects: []model.ExamSubject{
				{QuestionCount: 30, PointsPerQuestion: 2, Order: 1},
			},
			wantMax: 60,
		},
		{
			name: "three subjects",
			subjects: []model.ExamSubject{
				{QuestionCount: 10, PointsPerQuestion: 1, Order: 1},
				{QuestionCount: 20, PointsPerQuestion: 2, Order: 2},
				{QuestionCount: 5, PointsPerQuestion: 4, Order: 3},
			},
			wantMax: 70,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, totalMax, _ := ComputeScores(tc.subjects, nil, model.AnswerMap{})
			if totalMax != tc.wantMax {
				t.Fatalf("totalMax: got %d, want %d", totalMax, tc.wantMax)
			}
		})
	}
}
