package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/scoring"
	"github.com/stemsi/recruit-backend/internal/service"
)

type fakeBank []model.Question

func (b fakeBank) ListAll(context.Context) ([]model.Question, error) { return b, nil }

type fakeFeedback struct {
	byApplicant map[uuid.UUID][]model.Feedback
	created     []*model.Feedback
}

func (f *fakeFeedback) ListByApplicant(_ context.Context, id uuid.UUID) ([]model.Feedback, error) {
	return f.byApplicant[id], nil
}

func bank() fakeBank {
	opts := []string{"A", "B", "C", "D"}
	return fakeBank{
		{ID: 1, Prompt: "q1", Options: opts, CorrectAnswer: model.IndexAnswer(0)},
		{ID: 2, Prompt: "q2", Options: opts, CorrectAnswer: model.IndexAnswer(1)},
		{ID: 3, Prompt: "q3", Options: opts, CorrectAnswer: model.TextAnswer("c")},
	}
}

func storedResult(t *testing.T, id uuid.UUID, answers model.AnswerRecord) *model.TestResult {
	t.Helper()
	data := model.TestData{Answers: answers, Score: 2, TotalQuestions: 3, Percentage: 66.67}
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	return &model.TestResult{
		ApplicantID:    id,
		CorrectAnswers: 2,
		TotalQuestions: 3,
		Percentage:     66.67,
		TestData:       raw,
	}
}

func TestBuildRecord_StoredResult(t *testing.T) {
	id := uuid.New()
	result := storedResult(t, id, model.AnswerRecord{
		1: model.IndexAnswer(0),
		2: model.IndexAnswer(1),
		3: model.IndexAnswer(0),
	})

	rec, err := service.BuildRecord(result, bank(), nil)
	if err != nil {
		t.Fatalf("BuildRecord: %v", err)
	}

	res := scoring.Normalize(rec)
	if res.CorrectAnswerCount != 2 || res.TotalQuestions != 3 {
		t.Errorf("unexpected counts %+v", res)
	}
	if math.Abs(res.Percentage-66.67) > 0.001 {
		t.Errorf("percentage = %v", res.Percentage)
	}
	want := []bool{true, true, false}
	for i, v := range want {
		if res.PerQuestionVerdict[i] != v {
			t.Errorf("verdict[%d] = %v, want %v", i, res.PerQuestionVerdict[i], v)
		}
	}
}

func TestBuildRecord_AutosavedOnly(t *testing.T) {
	rec, err := service.BuildRecord(nil, bank(), model.AnswerRecord{
		1: model.IndexAnswer(0),
		3: model.TextAnswer(" C "),
	})
	if err != nil {
		t.Fatalf("BuildRecord: %v", err)
	}

	res := scoring.Normalize(rec)
	if res.TotalQuestions != 3 {
		t.Errorf("total = %d, want 3", res.TotalQuestions)
	}
	if res.CorrectAnswerCount != 0 || res.Percentage != 0 {
		t.Errorf("no stored count should score 0, got %+v", res)
	}
	want := []bool{true, false, true}
	for i, v := range want {
		if res.PerQuestionVerdict[i] != v {
			t.Errorf("verdict[%d] = %v, want %v", i, res.PerQuestionVerdict[i], v)
		}
	}
}

func TestBuildRecord_Empty(t *testing.T) {
	rec, err := service.BuildRecord(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := scoring.Normalize(rec)
	if res.TotalQuestions != 15 || res.CorrectAnswerCount != 0 || len(res.PerQuestionVerdict) != 0 {
		t.Errorf("unexpected empty-record result %+v", res)
	}
}

func TestReviewService_GetReview(t *testing.T) {
	tested := registered("ana")
	tested.Status = model.ApplicantStatusTested
	applicants := newFakeApplicants(tested)

	results := newFakeResults()
	results.results[tested.ID] = storedResult(t, tested.ID, model.AnswerRecord{
		1: model.IndexAnswer(0),
		2: model.IndexAnswer(1),
	})
	feedback := &fakeFeedback{byApplicant: map[uuid.UUID][]model.Feedback{
		tested.ID: {{ApplicantID: tested.ID, Rating: 5}},
	}}

	svc := service.NewReviewService(applicants, results, bank(), feedback)

	review, err := svc.GetReview(context.Background(), tested.ID)
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if review.Result == nil || len(review.Feedback) != 1 || len(review.Questions) != 3 {
		t.Errorf("incomplete review %+v", review)
	}
	if review.Score.CorrectAnswerCount != 2 {
		t.Errorf("correct = %d, want 2", review.Score.CorrectAnswerCount)
	}

	if _, err := svc.GetReview(context.Background(), uuid.New()); !errors.Is(err, service.ErrApplicantNotFound) {
		t.Errorf("unknown applicant: %v", err)
	}
}

func TestReviewService_GetReviewWithoutResult(t *testing.T) {
	a := registered("bob")
	results := newFakeResults()
	results.answers[a.ID] = model.AnswerRecord{2: model.IndexAnswer(1)}

	svc := service.NewReviewService(newFakeApplicants(a), results, bank(), &fakeFeedback{})

	review, err := svc.GetReview(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if review.Result != nil {
		t.Error("expected no stored result")
	}
	if len(review.Score.PerQuestionVerdict) != 3 || !review.Score.PerQuestionVerdict[1] {
		t.Errorf("verdicts = %v", review.Score.PerQuestionVerdict)
	}
}
