package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicantStatus tracks where a candidate is in the recruitment funnel.
type ApplicantStatus string

const (
	ApplicantStatusRegistered   ApplicantStatus = "REGISTERED"
	ApplicantStatusTested       ApplicantStatus = "TESTED"
	ApplicantStatusDisqualified ApplicantStatus = "DISQUALIFIED"
)

// Applicant is a registered candidate.
type Applicant struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Position        string          `json:"position"`
	ExperienceYears int             `json:"experience_years"`
	Status          ApplicantStatus `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RegisterApplicantRequest is the payload for candidate self-registration.
type RegisterApplicantRequest struct {
	Name            string `json:"name" binding:"required,min=2,max=120"`
	Email           string `json:"email" binding:"required,email,max=255"`
	Phone           string `json:"phone" binding:"required,min=6,max=20"`
	Position        string `json:"position" binding:"required,max=120"`
	ExperienceYears int    `json:"experience_years" binding:"min=0,max=60"`
}
