package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/repository"
	"github.com/stemsi/recruit-backend/internal/scoring"
)

// ResultReader loads stored results and autosaved answers.
type ResultReader interface {
	GetByApplicant(ctx context.Context, applicantID uuid.UUID) (*model.TestResult, error)
	ListAnswers(ctx context.Context, applicantID uuid.UUID) (model.AnswerRecord, error)
}

// QuestionBank lists the stored question bank.
type QuestionBank interface {
	ListAll(ctx context.Context) ([]model.Question, error)
}

// FeedbackReader lists an applicant's feedback.
type FeedbackReader interface {
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]model.Feedback, error)
}

// ReviewService assembles an applicant's record for recruiter review.
type ReviewService struct {
	applicants ApplicantLookup
	results    ResultReader
	questions  QuestionBank
	feedback   FeedbackReader
}

// NewReviewService creates a new ReviewService.
func NewReviewService(applicants ApplicantLookup, results ResultReader, questions QuestionBank, feedback FeedbackReader) *ReviewService {
	return &ReviewService{
		applicants: applicants,
		results:    results,
		questions:  questions,
		feedback:   feedback,
	}
}

// Review is everything a recruiter sees for one applicant.
type Review struct {
	Applicant *model.Applicant         `json:"applicant"`
	Result    *model.TestResult        `json:"result"`
	Feedback  []model.Feedback         `json:"feedback"`
	Score     scoring.NormalizedResult `json:"score"`
	Questions []model.Question         `json:"questions"`
}

// GetReview loads the applicant, their stored result and the question bank,
// and reduces them to a normalized score.
func (s *ReviewService) GetReview(ctx context.Context, applicantID uuid.UUID) (*Review, error) {
	applicant, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrApplicantNotFound
		}
		return nil, fmt.Errorf("get applicant: %w", err)
	}

	result, err := s.results.GetByApplicant(ctx, applicantID)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, fmt.Errorf("get result: %w", err)
		}
		result = nil
	}

	answers, err := s.results.ListAnswers(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	questions, err := s.questions.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	feedback, err := s.feedback.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	rec, err := BuildRecord(result, questions, answers)
	if err != nil {
		return nil, err
	}

	return &Review{
		Applicant: applicant,
		Result:    result,
		Feedback:  feedback,
		Score:     scoring.Normalize(rec),
		Questions: questions,
	}, nil
}

type recordQuestion struct {
	ID            int               `json:"id"`
	Prompt        string            `json:"prompt"`
	Options       []string          `json:"options"`
	CorrectAnswer model.AnswerValue `json:"correctAnswer"`
}

type recordResult struct {
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
	Percentage     float64 `json:"percentage"`
	Disqualified   bool    `json:"disqualified"`
}

// BuildRecord assembles the loosely-shaped applicant record the normalizer reads.
// Autosaved answers are used only when the stored test data carries none.
func BuildRecord(result *model.TestResult, questions []model.Question, autosaved model.AnswerRecord) (scoring.Record, error) {
	rec := map[string]any{}

	qs := make([]recordQuestion, len(questions))
	for i, q := range questions {
		qs[i] = recordQuestion{ID: q.ID, Prompt: q.Prompt, Options: q.Options, CorrectAnswer: q.CorrectAnswer}
	}
	rec["questions"] = qs

	storedAnswers := false
	if result != nil {
		rec["testResult"] = recordResult{
			CorrectAnswers: result.CorrectAnswers,
			TotalQuestions: result.TotalQuestions,
			Percentage:     result.Percentage,
			Disqualified:   result.Disqualified,
		}
		if len(result.TestData) > 0 {
			rec["testData"] = result.TestData
			var td model.TestData
			if err := json.Unmarshal(result.TestData, &td); err == nil && len(td.Answers) > 0 {
				storedAnswers = true
			}
		}
	}
	if !storedAnswers && len(autosaved) > 0 {
		rec["answers"] = autosaved
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return scoring.ParseRecord(raw), nil
}
