package service

import (
	"fmt"
	"strconv"
	"testing"

	"schoolexam_backend/internal/model"

	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }

func makeBankQuestions(n int) []model.Question {
	qs := make([]model.Question, 0, n)
	for i := 1; i <= n; i++ {
		letter := string(rune('A' + (i % 4)))
		qs = append(qs, model.Question{
			BaseModel:     model.BaseModel{ID: uint(i)},
			Text:          fmt.Sprintf("question %d", i),
			OptionA:       "first",
			OptionB:       "second",
			OptionC:       strPtr("third"),
			OptionD:       strPtr("fourth"),
			CorrectAnswer: strPtr(letter),
		})
	}
	return qs
}

func TestBuildVariantData_SampledSubject(t *testing.T) {
	subjects := []model.ExamSubject{
		{
			BaseModel:         model.BaseModel{ID: 10},
			Name:              "Mathematics",
			QuestionCount:     5,
			PointsPerQuestion: 4,
			Order:             1,
			QuestionBankID:    uintPtr(7),
		},
	}
	eligible := map[uint][]model.Question{7: makeBankQuestions(12)}

	data := BuildVariantData(subjects, eligible)

	if len(data.Subjects) != 1 {
		t.Fatalf("subjects: got %d, want 1", len(data.Subjects))
	}
	vs := data.Subjects[0]
	if vs.SubjectID != 10 || vs.Order != 1 || vs.PointsPerQuestion != 4 {
		t.Fatalf("subject metadata not carried: %+v", vs)
	}
	if len(vs.Questions) != 5 {
		t.Fatalf("questions: got %d, want 5", len(vs.Questions))
	}
	if len(vs.AnswerKey) != 5 {
		t.Fatalf("answer key size: got %d, want 5", len(vs.AnswerKey))
	}

	// Positions must run 1..k and the key must echo each question's letter.
	seen := map[string]bool{}
	for i, q := range vs.Questions {
		if q.Position != i+1 {
			t.Fatalf("position at index %d: got %d, want %d", i, q.Position, i+1)
		}
		pos := strconv.Itoa(q.Position)
		if vs.AnswerKey[pos] != q.CorrectAnswer {
			t.Fatalf("key mismatch at %s: key %q, question %q", pos, vs.AnswerKey[pos], q.CorrectAnswer)
		}
		if seen[q.Text] {
			t.Fatalf("duplicate question sampled: %q", q.Text)
		}
		seen[q.Text] = true
	}
}

func TestBuildVariantData_UnderfilledBank(t *testing.T) {
	subjects := []model.ExamSubject{
		{
			BaseModel:      model.BaseModel{ID: 3},
			Name:           "Physics",
			QuestionCount:  10,
			Order:          1,
			QuestionBankID: uintPtr(2),
		},
	}
	eligible := map[uint][]model.Question{2: makeBankQuestions(4)}

	data := BuildVariantData(subjects, eligible)

	vs := data.Subjects[0]
	if len(vs.Questions) != 4 {
		t.Fatalf("under-filled subject: got %d questions, want 4", len(vs.Questions))
	}
	for i, q := range vs.Questions {
		if q.Position != i+1 {
			t.Fatalf("position at index %d: got %d, want %d", i, q.Position, i+1)
		}
	}
	if len(vs.AnswerKey) != 4 {
		t.Fatalf("answer key size: got %d, want 4", len(vs.AnswerKey))
	}
}

func TestBuildVariantData_ManualSubjectCarriesBaseKey(t *testing.T) {
	base := model.AnswerKey{"1": "A", "2": "C", "3": "B"}
	subjects := []model.ExamSubject{
		{
			BaseModel:      model.BaseModel{ID: 4},
			Name:           "History",
			QuestionCount:  3,
			Order:          2,
			CorrectAnswers: datatypes.NewJSONType(base),
		},
	}

	data := BuildVariantData(subjects, nil)

	vs := data.Subjects[0]
	if len(vs.Questions) != 0 {
		t.Fatalf("manual subject carries no question list, got %d", len(vs.Questions))
	}
	if len(vs.AnswerKey) != 3 {
		t.Fatalf("answer key size: got %d, want 3", len(vs.AnswerKey))
	}
	for pos, want := range base {
		if vs.AnswerKey[pos] != want {
			t.Fatalf("base key not carried at %s: got %q, want %q", pos, vs.AnswerKey[pos], want)
		}
	}
}

func TestBuildVariantData_EmptyBankFallsBackToBaseKey(t *testing.T) {
	base := model.AnswerKey{"1": "D", "2": "D"}
	subjects := []model.ExamSubject{
		{
			BaseModel:      model.BaseModel{ID: 5},
			Name:           "Chemistry",
			QuestionCount:  2,
			Order:          1,
			QuestionBankID: uintPtr(99),
			CorrectAnswers: datatypes.NewJSONType(base),
		},
	}

	data := BuildVariantData(subjects, map[uint][]model.Question{99: {}})

	vs := data.Subjects[0]
	if len(vs.Questions) != 0 {
		t.Fatalf("empty bank must not sample, got %d questions", len(vs.Questions))
	}
	if vs.AnswerKey["1"] != "D" || vs.AnswerKey["2"] != "D" {
		t.Fatalf("base key not carried: %v", vs.AnswerKey)
	}
}

func TestBuildVariantData_PreservesSubjectOrder(t *testing.T) {
	subjects := []model.ExamSubject{
		{BaseModel: model.BaseModel{ID: 1}, Name: "First", QuestionCount: 1, Order: 1},
		{BaseModel: model.BaseModel{ID: 2}, Name: "Second", QuestionCount: 1, Order: 2},
		{BaseModel: model.BaseModel{ID: 3}, Name: "Third", QuestionCount: 1, Order: 3},
	}

	data := BuildVariantData(subjects, nil)

	if len(data.Subjects) != 3 {
		t.Fatalf("subjects: got %d, want 3", len(data.Subjects))
	}
	for i, vs := range data.Subjects {
		if vs.Order != i+1 {
			t.Fatalf("subject order at index %d: got %d, want %d", i, vs.Order, i+1)
		}
	}
}

func TestPlanAssignments_RoundRobin(t *testing.T) {
	students := []uint{1, 2, 3, 4, 5, 6, 7, 8, 9}
	variants := []string{"v1", "v2", "v3"}

	plan := PlanAssignments(students, variants)

	if len(plan) != len(students) {
		t.Fatalf("plan size: got %d, want %d", len(plan), len(students))
	}

	counts := map[string]int{}
	for i, a := range plan {
		if a.StudentID != students[i] {
			t.Fatalf("student order changed at %d: got %d, want %d", i, a.StudentID, students[i])
		}
		if want := variants[i%len(variants)]; a.VariantID != want {
			t.Fatalf("assignment at %d: got %s, want %s", i, a.VariantID, want)
		}
		counts[a.VariantID]++
	}

	// 9 students over 3 variants lands exactly 3 per variant.
	for _, v := range variants {
		if counts[v] != 3 {
			t.Fatalf("uneven distribution: %v", counts)
		}
	}
}

func TestPlanAssignments_UnevenRoster(t *testing.T) {
	plan := PlanAssignments([]uint{1, 2, 3, 4, 5}, []string{"a", "b"})

	counts := map[string]int{}
	for _, a := range plan {
		counts[a.VariantID]++
	}

	max, min := 0, len(plan)
	for _, n := range counts {
		if n > max {
			max = n
		}
		if n < min {
			min = n
		}
	}
	if max-min > 1 {
		t.Fatalf("distribution spread exceeds 1: %v", counts)
	}
}

func TestPlanAssignments_Deterministic(t *testing.T) {
	students := []uint{10, 20, 30, 40}
	variants := []string{"x", "y", "z"}

	first := PlanAssignments(students, variants)
	second := PlanAssignments(students, variants)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("plan not deterministic at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestPlanAssignments_NoVariants(t *testing.T) {
	if plan := PlanAssignments([]uint{1, 2}, nil); plan != nil {
		t.Fatalf("no variants must yield nil plan, got %+v", plan)
	}
}
