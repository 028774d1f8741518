package model

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is a candidate's post-test rating of the process.
type Feedback struct {
	ID          uuid.UUID `json:"id"`
	ApplicantID uuid.UUID `json:"applicant_id"`
	Rating      int       `json:"rating"`
	Comments    string    `json:"comments"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubmitFeedbackRequest is the payload for leaving feedback.
type SubmitFeedbackRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comments string `json:"comments" binding:"max=2000"`
}
