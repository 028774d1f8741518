package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/repository"
)

var ErrFeedbackBeforeTest = errors.New("feedback is only accepted after the test")

// FeedbackStore persists candidate feedback.
type FeedbackStore interface {
	Create(ctx context.Context, f *model.Feedback) error
	ListPaginated(ctx context.Context, limit, offset int) ([]repository.FeedbackEntry, int, error)
}

// FeedbackService handles post-test candidate feedback.
type FeedbackService struct {
	repo       FeedbackStore
	applicants ApplicantLookup
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(repo FeedbackStore, applicants ApplicantLookup) *FeedbackService {
	return &FeedbackService{repo: repo, applicants: applicants}
}

// Submit stores feedback from an applicant who has finished the test.
func (s *FeedbackService) Submit(ctx context.Context, applicantID uuid.UUID, req model.SubmitFeedbackRequest) (*model.Feedback, error) {
	applicant, err := s.applicants.GetByID(ctx, applicantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrApplicantNotFound
		}
		return nil, fmt.Errorf("get applicant: %w", err)
	}
	if applicant.Status == model.ApplicantStatusRegistered {
		return nil, ErrFeedbackBeforeTest
	}

	f := &model.Feedback{
		ApplicantID: applicantID,
		Rating:      req.Rating,
		Comments:    strings.TrimSpace(req.Comments),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return f, nil
}

// List returns a page of feedback, newest first.
func (s *FeedbackService) List(ctx context.Context, page, perPage int) ([]repository.FeedbackEntry, int, error) {
	return s.repo.ListPaginated(ctx, perPage, (page-1)*perPage)
}
