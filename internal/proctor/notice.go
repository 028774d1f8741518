package proctor

import "github.com/stemsi/recruit-backend/internal/model"

// NoticeKind identifies a user-facing event emitted by a session.
type NoticeKind string

const (
	NoticeTick             NoticeKind = "tick"
	NoticeTimeWarning      NoticeKind = "time_warning"
	NoticeTabWarning       NoticeKind = "tab_warning"
	NoticeFinalWarning     NoticeKind = "final_warning"
	NoticeWarningCleared   NoticeKind = "warning_cleared"
	NoticeDisqualified     NoticeKind = "disqualified"
	NoticeClipboardBlocked NoticeKind = "clipboard_blocked"
	NoticeSubmitted        NoticeKind = "submitted"
	NoticeSubmitFailed     NoticeKind = "submit_failed"
)

// Notice carries the session state at the moment the event happened.
type Notice struct {
	Kind      NoticeKind          `json:"kind"`
	Violation model.ViolationKind `json:"violation,omitempty"`
	Message   string              `json:"message,omitempty"`
	State     State               `json:"state"`
	Result    *model.TestData     `json:"result,omitempty"`
}

// IsViolation reports whether the notice was caused by an integrity event.
func (n Notice) IsViolation() bool {
	return n.Violation != ""
}
