package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"testing"

	"schoolexam_backend/internal/config"
	"schoolexam_backend/internal/model"
	"schoolexam_backend/internal/util"
	"schoolexam_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// In-memory stands-ins for the repositories, keyed the same way as the
// database unique indexes so upsert behavior matches.

type fakeExamStore struct {
	exams map[uint]*model.Exam
}

func (f *fakeExamStore) FindByID(schoolID, id uint) (*model.Exam, error) {
	e, ok := f.exams[id]
	if !ok || e.SchoolID != schoolID {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

type fakeVariantStore struct {
	seq      int
	variants map[string]*model.ExamVariant
}

func (f *fakeVariantStore) Create(v *model.ExamVariant) error {
	for _, existing := range f.variants {
		if existing.ExamID == v.ExamID && existing.VariantNum == v.VariantNum {
			return fmt.Errorf("duplicate variant number %d for exam %d", v.VariantNum, v.ExamID)
		}
	}
	f.seq++
	v.ID = fmt.Sprintf("variant-%d", f.seq)
	clone := *v
	f.variants[v.ID] = &clone
	return nil
}

func (f *fakeVariantStore) NextVariantNumber(examID uint) (int, error) {
	max := 0
	for _, v := range f.variants {
		if v.ExamID == examID && v.VariantNum > max {
			max = v.VariantNum
		}
	}
	return max + 1, nil
}

func (f *fakeVariantStore) FindByID(schoolID uint, id string) (*model.ExamVariant, error) {
	v, ok := f.variants[id]
	if !ok || v.SchoolID != schoolID {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *fakeVariantStore) ListByExam(examID uint) ([]model.ExamVariant, error) {
	var out []model.ExamVariant
	for _, v := range f.variants {
		if v.ExamID == examID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VariantNum < out[j].VariantNum })
	return out, nil
}

func (f *fakeVariantStore) Delete(schoolID uint, id string) error {
	v, ok := f.variants[id]
	if !ok || v.SchoolID != schoolID {
		return gorm.ErrRecordNotFound
	}
	delete(f.variants, id)
	return nil
}

type fakeResultStore struct {
	seq  int
	rows map[string]*model.ExamResult
}

func resultKey(examID, studentID uint) string {
	return fmt.Sprintf("%d/%d", examID, studentID)
}

func (f *fakeResultStore) Upsert(r *model.ExamResult) error {
	k := resultKey(r.ExamID, r.StudentID)
	if existing, ok := f.rows[k]; ok {
		existing.VariantID = r.VariantID
		existing.Answers = r.Answers
		existing.Scores = r.Scores
		existing.TotalScore = r.TotalScore
		existing.TotalMax = r.TotalMax
		existing.Percentage = r.Percentage
		existing.Source = r.Source
		existing.Notes = r.Notes
		return nil
	}
	f.seq++
	clone := *r
	clone.ID = fmt.Sprintf("result-%d", f.seq)
	f.rows[k] = &clone
	return nil
}

func (f *fakeResultStore) UpsertAssignment(r *model.ExamResult) error {
	k := resultKey(r.ExamID, r.StudentID)
	if existing, ok := f.rows[k]; ok {
		existing.VariantID = r.VariantID
		return nil
	}
	f.seq++
	clone := *r
	clone.ID = fmt.Sprintf("result-%d", f.seq)
	f.rows[k] = &clone
	return nil
}

func (f *fakeResultStore) FindByExamAndStudent(schoolID, examID, studentID uint) (*model.ExamResult, error) {
	r, ok := f.rows[resultKey(examID, studentID)]
	if !ok || r.SchoolID != schoolID {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeResultStore) ListByExam(schoolID, examID uint) ([]model.ExamResult, error) {
	var out []model.ExamResult
	for _, r := range f.rows {
		if r.SchoolID == schoolID && r.ExamID == examID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

type fakeQuestions struct {
	byBank map[uint][]model.Question
}

func (f *fakeQuestions) ListEligibleQuestions(bankID uint) ([]model.Question, error) {
	return f.byBank[bankID], nil
}

type fakeRoster struct {
	students []model.User
}

func (f *fakeRoster) FindStudents(schoolID uint, ids []uint) ([]model.User, error) {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.User
	for _, u := range f.students {
		if u.SchoolID == schoolID && u.Role == model.Student && want[u.ID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func rosterOf(schoolID uint, ids ...uint) *fakeRoster {
	r := &fakeRoster{}
	for _, id := range ids {
		r.students = append(r.students, model.User{
			BaseModel: model.BaseModel{ID: id},
			SchoolID:  schoolID,
			Role:      model.Student,
		})
	}
	return r
}

func storeExam(schoolID uint) *model.Exam {
	return &model.Exam{
		BaseModel: model.BaseModel{ID: 1},
		SchoolID:  schoolID,
		Title:     "Midterm",
		Status:    model.ExamStatusPublished,
		Subjects: []model.ExamSubject{
			{
				BaseModel:         model.BaseModel{ID: 11},
				ExamID:            1,
				Name:              "Mathematics",
				QuestionCount:     2,
				PointsPerQuestion: 5,
				Order:             1,
				CorrectAnswers:    datatypes.NewJSONType(model.AnswerKey{"1": "A", "2": "B"}),
			},
		},
	}
}

func newStoreBackedVariantService(exam *model.Exam, roster *fakeRoster) (*VariantService, *fakeVariantStore, *fakeResultStore) {
	variants := &fakeVariantStore{variants: map[string]*model.ExamVariant{}}
	results := &fakeResultStore{rows: map[string]*model.ExamResult{}}
	svc := &VariantService{
		ExamRepo:   &fakeExamStore{exams: map[uint]*model.Exam{exam.ID: exam}},
		BankRepo:   &fakeQuestions{},
		Repo:       variants,
		ResultRepo: results,
		UserRepo:   roster,
	}
	return svc, variants, results
}

func TestAssignVariants_SequentialUniqueNumbers(t *testing.T) {
	exam := storeExam(1)
	roster := []uint{1, 2, 3, 4, 5, 6, 7, 8, 9}
	svc, variants, results := newStoreBackedVariantService(exam, rosterOf(1, roster...))

	first, err := svc.AssignVariants(1, 1, 3, roster)
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	for i, v := range first.Variants {
		if v.VariantNum != i+1 {
			t.Fatalf("first batch variantNum[%d]: got %d, want %d", i, v.VariantNum, i+1)
		}
	}
	if first.AssignedCount != 9 {
		t.Fatalf("assignedCount: got %d, want 9", first.AssignedCount)
	}

	second, err := svc.AssignVariants(1, 1, 3, roster)
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	for i, v := range second.Variants {
		if v.VariantNum != i+4 {
			t.Fatalf("second batch variantNum[%d]: got %d, want %d", i, v.VariantNum, i+4)
		}
	}

	stored, _ := variants.ListByExam(1)
	seen := map[int]bool{}
	for _, v := range stored {
		if seen[v.VariantNum] {
			t.Fatalf("variantNum %d allocated twice", v.VariantNum)
		}
		seen[v.VariantNum] = true
	}
	if len(stored) != 6 {
		t.Fatalf("stored variants: got %d, want 6", len(stored))
	}

	// Reassignment moves links, it never duplicates result rows.
	rows, _ := results.ListByExam(1, 1)
	if len(rows) != 9 {
		t.Fatalf("result rows: got %d, want 9", len(rows))
	}
	perVariant := map[string]int{}
	for _, r := range rows {
		if r.VariantID == nil {
			t.Fatalf("student %d has no variant link", r.StudentID)
		}
		perVariant[*r.VariantID]++
	}
	for _, v := range second.Variants {
		if perVariant[v.ID] != 3 {
			t.Fatalf("variant %s: got %d students, want 3", v.ID, perVariant[v.ID])
		}
	}
}

func TestAssignVariants_KeepsExistingScores(t *testing.T) {
	exam := storeExam(1)
	svc, _, results := newStoreBackedVariantService(exam, rosterOf(1, 7))

	results.rows[resultKey(1, 7)] = &model.ExamResult{
		UUIDBase:   model.UUIDBase{ID: "result-seed"},
		SchoolID:   1,
		ExamID:     1,
		StudentID:  7,
		Answers:    datatypes.NewJSONType(model.AnswerMap{"1": {"1": "A", "2": "B"}}),
		TotalScore: 10,
		TotalMax:   10,
		Percentage: 100,
		Source:     model.SourceScan,
	}

	out, err := svc.AssignVariants(1, 1, 1, []uint{7})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	row, err := results.FindByExamAndStudent(1, 1, 7)
	if err != nil {
		t.Fatalf("find result: %v", err)
	}
	if row.VariantID == nil || *row.VariantID != out.Variants[0].ID {
		t.Fatalf("variant link not moved: %+v", row.VariantID)
	}
	if row.TotalScore != 10 || row.Percentage != 100 || row.Source != model.SourceScan {
		t.Fatalf("existing scores were overwritten: %+v", row)
	}
}

func TestScoreSubmission_ResubmitKeepsSingleRow(t *testing.T) {
	exam := storeExam(1)
	results := &fakeResultStore{rows: map[string]*model.ExamResult{}}
	scoring := &ScoringService{
		ExamRepo:    &fakeExamStore{exams: map[uint]*model.Exam{1: exam}},
		VariantRepo: &fakeVariantStore{variants: map[string]*model.ExamVariant{}},
		ResultRepo:  results,
	}

	answers := model.AnswerMap{"1": {"1": "A", "2": "C"}}
	first, err := scoring.ScoreSubmission(1, 1, 7, answers, model.SourceManual, nil, "")
	if err != nil {
		t.Fatalf("first submission: %v", err)
	}
	second, err := scoring.ScoreSubmission(1, 1, 7, answers, model.SourceManual, nil, "")
	if err != nil {
		t.Fatalf("resubmission: %v", err)
	}

	if len(results.rows) != 1 {
		t.Fatalf("result rows: got %d, want 1", len(results.rows))
	}
	if second.ID != first.ID {
		t.Fatalf("resubmission created a new row: %s vs %s", second.ID, first.ID)
	}
	if first.TotalScore != 5 || second.TotalScore != 5 {
		t.Fatalf("scores diverged: %d vs %d", first.TotalScore, second.TotalScore)
	}

	// A corrected resubmission overwrites the same row in place.
	third, err := scoring.ScoreSubmission(1, 1, 7, model.AnswerMap{"1": {"1": "A", "2": "B"}}, model.SourceScan, nil, "rescan")
	if err != nil {
		t.Fatalf("corrected resubmission: %v", err)
	}
	if len(results.rows) != 1 {
		t.Fatalf("result rows after correction: got %d, want 1", len(results.rows))
	}
	if third.ID != first.ID {
		t.Fatalf("correction created a new row: %s vs %s", third.ID, first.ID)
	}
	if third.TotalScore != 10 || third.Source != model.SourceScan || third.Notes != "rescan" {
		t.Fatalf("correction not stored: %+v", third)
	}
}

func TestScoreSubmission_DeletedVariantFallsBack(t *testing.T) {
	exam := storeExam(1)
	svc, variants, results := newStoreBackedVariantService(exam, rosterOf(1, 7))

	out, err := svc.AssignVariants(1, 1, 1, []uint{7})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	vid := out.Variants[0].ID

	if err := svc.DeleteVariant(context.Background(), 1, vid); err != nil {
		t.Fatalf("delete variant: %v", err)
	}

	scoring := &ScoringService{
		ExamRepo:    &fakeExamStore{exams: map[uint]*model.Exam{1: exam}},
		VariantRepo: variants,
		ResultRepo:  results,
	}
	res, err := scoring.ScoreSubmission(1, 1, 7, model.AnswerMap{"1": {"1": "A", "2": "B"}}, model.SourceScan, &vid, "")
	if err != nil {
		t.Fatalf("scoring against deleted variant: %v", err)
	}
	if res.TotalScore != 10 || res.TotalMax != 10 {
		t.Fatalf("base-key fallback scoring: got %d/%d, want 10/10", res.TotalScore, res.TotalMax)
	}
	if res.VariantID == nil || *res.VariantID != vid {
		t.Fatalf("dangling variant link dropped: %+v", res.VariantID)
	}
}

func TestSaveManualAssignments_SkipsUnknownStudents(t *testing.T) {
	exam := storeExam(1)
	svc, _, results := newStoreBackedVariantService(exam, rosterOf(1, 1, 2))

	out, err := svc.AssignVariants(1, 1, 1, []uint{1})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	vid := out.Variants[0].ID

	assigned, err := svc.SaveManualAssignments(1, 1, []ManualAssignment{
		{StudentID: 2, VariantID: vid},
		{StudentID: 999, VariantID: vid},
	})
	if err != nil {
		t.Fatalf("manual assignments: %v", err)
	}
	if assigned != 1 {
		t.Fatalf("assigned: got %d, want 1", assigned)
	}
	if _, err := results.FindByExamAndStudent(1, 1, 2); err != nil {
		t.Fatalf("student 2 not linked: %v", err)
	}
	if _, err := results.FindByExamAndStudent(1, 1, 999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("unknown student got a result row")
	}

	if _, err := svc.SaveManualAssignments(1, 1, []ManualAssignment{{StudentID: 999, VariantID: vid}}); !errors.Is(err, util.ErrEmptyRoster) {
		t.Fatalf("all-unknown pairs: got %v, want ErrEmptyRoster", err)
	}
}

type fakeBankStore struct {
	bank    *model.QuestionBank
	updated bool
}

func (f *fakeBankStore) Create(b *model.QuestionBank) error {
	f.bank = b
	return nil
}

func (f *fakeBankStore) FindByID(schoolID, id uint) (*model.QuestionBank, error) {
	if f.bank == nil || f.bank.SchoolID != schoolID || f.bank.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.bank, nil
}

func (f *fakeBankStore) List(schoolID uint, page, limit int) ([]model.QuestionBank, int64, error) {
	if f.bank == nil || f.bank.SchoolID != schoolID {
		return nil, 0, nil
	}
	return []model.QuestionBank{*f.bank}, 1, nil
}

func (f *fakeBankStore) Replace(b *model.QuestionBank, questions []model.Question) error {
	b.QuestionCount = len(questions)
	f.bank = b
	return nil
}

func (f *fakeBankStore) Update(b *model.QuestionBank) error {
	f.updated = true
	f.bank = b
	return nil
}

func (f *fakeBankStore) Delete(schoolID, id uint) error {
	if f.bank == nil || f.bank.SchoolID != schoolID || f.bank.ID != id {
		return gorm.ErrRecordNotFound
	}
	f.bank = nil
	return nil
}

func TestUploadSource_SavesThroughStore(t *testing.T) {
	store := &fakeBankStore{bank: &model.QuestionBank{
		BaseModel: model.BaseModel{ID: 3},
		SchoolID:  1,
		Subject:   "Mathematics",
	}}
	storage := &StorageService{Provider: &LocalStorageProvider{
		Config: &config.StorageConfig{LocalPath: t.TempDir()},
	}}
	svc := &QuestionBankService{Repo: store, Storage: storage}

	url, err := svc.UploadSource(context.Background(), 1, 3, "bank.pdf", strings.NewReader("doc"), 3, "application/pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url == "" {
		t.Fatal("empty url")
	}
	if !store.updated {
		t.Fatal("bank was not saved through the store")
	}
	if store.bank.SourceFile != "bank.pdf" {
		t.Fatalf("sourceFile: got %q, want %q", store.bank.SourceFile, "bank.pdf")
	}

	if _, err := svc.UploadSource(context.Background(), 1, 99, "bank.pdf", strings.NewReader("doc"), 3, "application/pdf"); !errors.Is(err, util.ErrBankNotFound) {
		t.Fatalf("unknown bank: got %v, want ErrBankNotFound", err)
	}
}
