package model

import "time"

// ResultJob is queued on persist_results_queue when a session submits.
type ResultJob struct {
	ApplicantID string       `json:"applicant_id"`
	TestData    TestData     `json:"test_data"`
	Reason      SubmitReason `json:"reason"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

// AnswerJob is queued on persist_answers_queue for every answer selection.
type AnswerJob struct {
	ApplicantID string      `json:"applicant_id"`
	QuestionID  int         `json:"question_id"`
	Answer      AnswerValue `json:"answer"`
	AnsweredAt  time.Time   `json:"answered_at"`
}

// MonitorEventType names events published on the proctoring monitor channel.
type MonitorEventType string

const (
	MonitorSessionStarted MonitorEventType = "session_started"
	MonitorAnswer         MonitorEventType = "answer"
	MonitorViolation      MonitorEventType = "violation"
	MonitorDisqualified   MonitorEventType = "disqualified"
	MonitorSubmitted      MonitorEventType = "submitted"
)

// MonitorEvent is forwarded verbatim to admins watching the live monitor.
type MonitorEvent struct {
	Type        MonitorEventType `json:"type"`
	ApplicantID string           `json:"applicant_id"`
	Data        any              `json:"data,omitempty"`
	At          time.Time        `json:"at"`
}
