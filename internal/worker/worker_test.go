package worker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stemsi/recruit-backend/internal/model"
)

const (
	applicantA = "6f1c1a52-1f7e-4f3f-9d37-2f0a6f7b9c11"
	applicantB = "0b4b7d8e-8a2e-4d59-b4f8-3f5a1e9d2c22"
)

func TestShouldFlush(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		since time.Duration
		want  bool
	}{
		{"empty never flushes", 0, time.Hour, false},
		{"full batch", BatchSize, 0, true},
		{"partial batch before timeout", 3, time.Second, false},
		{"partial batch after timeout", 3, BatchTimeout, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldFlush(tt.size, tt.since); got != tt.want {
				t.Errorf("shouldFlush(%d, %v) = %v, want %v", tt.size, tt.since, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	job, err := decode[model.AnswerJob](`{"applicant_id":"` + applicantA + `","question_id":4,"answer":"Paris"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if text, ok := job.Answer.Text(); !ok || text != "Paris" || job.QuestionID != 4 {
		t.Errorf("unexpected job %+v", job)
	}

	if _, err := decode[model.AnswerJob](`{"question_id":`); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestBuildResultColumns(t *testing.T) {
	now := time.Now()
	batch := []model.ResultJob{
		{ApplicantID: applicantA, Reason: model.SubmitReasonManual, SubmittedAt: now, TestData: model.TestData{
			Answers: model.AnswerRecord{1: model.IndexAnswer(2)}, Score: 12, TotalQuestions: 15, Percentage: 80, TimeSpent: 900,
		}},
		{ApplicantID: "not-a-uuid", Reason: model.SubmitReasonTimeout},
		{ApplicantID: applicantB, Reason: model.SubmitReasonDisqualified, TestData: model.TestData{
			Score: 3, TotalQuestions: 15, Percentage: 20, TabSwitchCount: 3, Disqualified: true,
		}},
		{ApplicantID: applicantA, Reason: model.SubmitReasonTimeout, TestData: model.TestData{Score: 1}},
	}

	cols, invalid, err := buildResultColumns(batch)
	if err != nil {
		t.Fatalf("buildResultColumns: %v", err)
	}
	if len(invalid) != 1 || invalid[0].ApplicantID != "not-a-uuid" {
		t.Errorf("invalid = %v", invalid)
	}
	if len(cols.ApplicantIDs) != 2 {
		t.Fatalf("rows = %d, want 2", len(cols.ApplicantIDs))
	}
	if cols.Correct[0] != 12 || cols.Reasons[0] != "manual" {
		t.Errorf("first applicant's first result should win, got correct=%d reason=%s", cols.Correct[0], cols.Reasons[0])
	}
	if cols.Statuses[0] != "TESTED" || cols.Statuses[1] != "DISQUALIFIED" {
		t.Errorf("statuses = %v", cols.Statuses)
	}
	if cols.SubmittedAt[1].IsZero() {
		t.Error("missing submitted_at should default to now")
	}

	var stored model.TestData
	if err := json.Unmarshal([]byte(cols.TestData[0]), &stored); err != nil {
		t.Fatalf("test data is not JSON: %v", err)
	}
	if idx, _ := stored.Answers[1].Index(); idx != 2 {
		t.Errorf("stored answers = %v", stored.Answers)
	}

	for i, arr := range [][]any{toAny(cols.Totals), toAny(cols.TabSwitches), toAny(cols.Disqualified)} {
		if len(arr) != 2 {
			t.Errorf("column %d has %d entries, want 2", i, len(arr))
		}
	}
	if got := len(cols.args()); got != 11 {
		t.Errorf("args = %d, want 11", got)
	}
}

func toAny[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func TestBuildAnswerColumns_KeepsLatest(t *testing.T) {
	t0 := time.Now()
	batch := []model.AnswerJob{
		{ApplicantID: applicantA, QuestionID: 1, Answer: model.IndexAnswer(0), AnsweredAt: t0},
		{ApplicantID: applicantA, QuestionID: 2, Answer: model.TextAnswer("Paris"), AnsweredAt: t0},
		{ApplicantID: applicantA, QuestionID: 1, Answer: model.IndexAnswer(3), AnsweredAt: t0.Add(time.Second)},
		{ApplicantID: applicantB, QuestionID: 1, Answer: model.IndexAnswer(1), AnsweredAt: t0},
		{ApplicantID: applicantB, QuestionID: 1, Answer: model.IndexAnswer(2), AnsweredAt: t0.Add(-time.Second)},
		{ApplicantID: "bad", QuestionID: 1, Answer: model.IndexAnswer(1), AnsweredAt: t0},
		{ApplicantID: applicantB, QuestionID: 2, AnsweredAt: t0},
	}

	cols, err := buildAnswerColumns(batch)
	if err != nil {
		t.Fatalf("buildAnswerColumns: %v", err)
	}
	if len(cols.ApplicantIDs) != 3 {
		t.Fatalf("rows = %d, want 3", len(cols.ApplicantIDs))
	}

	want := []string{"3", `"Paris"`, "1"}
	for i, w := range want {
		if cols.Answers[i] != w {
			t.Errorf("answer[%d] = %s, want %s", i, cols.Answers[i], w)
		}
	}
}

func TestViolationRows(t *testing.T) {
	at := time.Now()
	rows, skipped := violationRows([]model.ViolationEvent{
		{ApplicantID: applicantA, Kind: model.ViolationVisibility, TabSwitchCount: 1, RecordedAt: at},
		{ApplicantID: applicantA, Kind: "screenshot"},
		{ApplicantID: "bad", Kind: model.ViolationCopy},
		{ApplicantID: applicantB, Kind: model.ViolationCopy, CopyAttemptCount: 2, RecordedAt: at},
	})
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(rows[0]) != len(violationColumns) {
		t.Errorf("row width %d does not match %d columns", len(rows[0]), len(violationColumns))
	}
	if rows[1][1] != "copy" || rows[1][3] != 2 {
		t.Errorf("unexpected row %v", rows[1])
	}
}
