package websocket

import "github.com/stemsi/recruit-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer    Action = "answer"
	ActionNavigate  Action = "navigate"
	ActionViolation Action = "violation"
	ActionSubmit    Action = "submit"
	ActionPing      Action = "ping"
)

// RequestPayload is every client message. Fields unused by an action are ignored.
type RequestPayload struct {
	Action     Action              `json:"action"`
	QuestionID int                 `json:"question_id,omitempty"`
	Value      model.AnswerValue   `json:"value"`
	Index      *int                `json:"index,omitempty"`
	Kind       model.ViolationKind `json:"kind,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState  Event = "state"
	EventNotice Event = "notice"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// ResponsePayload wraps every server message.
type ResponsePayload struct {
	Event Event `json:"event"`
	Data  any   `json:"data,omitempty"`
}

// ErrorData is the body of an error event.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
