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

var ErrDuplicateEmail = repository.ErrDuplicateEmail

// ApplicantStore persists applicants.
type ApplicantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Applicant, error)
	ListPaginated(ctx context.Context, status *model.ApplicantStatus, limit, offset int) ([]model.Applicant, int, error)
	Create(ctx context.Context, a *model.Applicant) error
}

// ApplicantService handles candidate registration and lookup.
type ApplicantService struct {
	repo ApplicantStore
}

// NewApplicantService creates a new ApplicantService.
func NewApplicantService(repo ApplicantStore) *ApplicantService {
	return &ApplicantService{repo: repo}
}

// Register creates an applicant from a validated request.
func (s *ApplicantService) Register(ctx context.Context, req model.RegisterApplicantRequest) (*model.Applicant, error) {
	a := &model.Applicant{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		Position:        strings.TrimSpace(req.Position),
		ExperienceYears: req.ExperienceYears,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create applicant: %w", err)
	}
	return a, nil
}

// GetByID retrieves an applicant.
func (s *ApplicantService) GetByID(ctx context.Context, id uuid.UUID) (*model.Applicant, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrApplicantNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns a page of applicants, optionally filtered by status.
func (s *ApplicantService) List(ctx context.Context, status *model.ApplicantStatus, page, perPage int) ([]model.Applicant, int, error) {
	return s.repo.ListPaginated(ctx, status, perPage, (page-1)*perPage)
}
