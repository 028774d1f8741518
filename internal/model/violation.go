package model

import "time"

// ViolationKind enumerates integrity events reported by the browser.
type ViolationKind string

const (
	ViolationVisibility ViolationKind = "visibility"
	ViolationCopy       ViolationKind = "copy"
	ViolationCut        ViolationKind = "cut"
	ViolationPaste      ViolationKind = "paste"
)

// Valid reports whether k is a known kind.
func (k ViolationKind) Valid() bool {
	switch k {
	case ViolationVisibility, ViolationCopy, ViolationCut, ViolationPaste:
		return true
	}
	return false
}

// ViolationEvent is a recorded integrity event, queued for persistence.
type ViolationEvent struct {
	ApplicantID      string        `json:"applicant_id"`
	Kind             ViolationKind `json:"kind"`
	TabSwitchCount   int           `json:"tab_switch_count"`
	CopyAttemptCount int           `json:"copy_attempt_count"`
	RecordedAt       time.Time     `json:"recorded_at"`
}

// SelectAnswerRequest is the payload for recording an answer.
type SelectAnswerRequest struct {
	QuestionID int         `json:"question_id" binding:"required,min=1"`
	Value      AnswerValue `json:"value" binding:"required"`
}

// ReportViolationRequest is the payload for reporting an integrity event.
type ReportViolationRequest struct {
	Kind string `json:"kind" binding:"required,oneof=visibility copy cut paste"`
}

// NavigateRequest moves the candidate to another question.
type NavigateRequest struct {
	Index int `json:"index" binding:"min=0"`
}
