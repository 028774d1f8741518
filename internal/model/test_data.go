package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubmitReason records which trigger produced the submission.
type SubmitReason string

const (
	SubmitReasonManual       SubmitReason = "manual"
	SubmitReasonTimeout      SubmitReason = "timeout"
	SubmitReasonDisqualified SubmitReason = "disqualified"
)

// TestData is the payload handed to the submit callback when a session ends.
// Field names follow the legacy testData shape stored on applicant records.
type TestData struct {
	Answers        AnswerRecord `json:"answers"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Percentage     float64      `json:"percentage"`
	TimeSpent      int          `json:"timeSpent"`
	TabSwitchCount int          `json:"tabSwitchCount"`
	CopyAttempts   int          `json:"copyAttempts"`
	Disqualified   bool         `json:"disqualified"`
}

// TestResult is a persisted, submitted test attempt.
type TestResult struct {
	ApplicantID    uuid.UUID       `json:"applicant_id"`
	CorrectAnswers int             `json:"correct_answers"`
	TotalQuestions int             `json:"total_questions"`
	Percentage     float64         `json:"percentage"`
	TimeSpent      int             `json:"time_spent"`
	TabSwitchCount int             `json:"tab_switch_count"`
	CopyAttempts   int             `json:"copy_attempts"`
	Disqualified   bool            `json:"disqualified"`
	Reason         SubmitReason    `json:"reason"`
	TestData       json.RawMessage `json:"test_data"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}
