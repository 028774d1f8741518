package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authorization ─────────────────────────────────────────────────
	ErrAdminKeyRequired ErrCode = "ADMIN_KEY_REQUIRED"
	ErrForbidden        ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Test session ──────────────────────────────────────────────────
	ErrAlreadyTested    ErrCode = "ALREADY_TESTED"
	ErrSessionExists    ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionNotFound  ErrCode = "SESSION_NOT_FOUND"
	ErrSessionClosed    ErrCode = "SESSION_CLOSED"
	ErrUnknownQuestion  ErrCode = "UNKNOWN_QUESTION"
	ErrInvalidAnswer    ErrCode = "INVALID_ANSWER"
	ErrInvalidIndex     ErrCode = "INVALID_QUESTION_INDEX"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrResultNotFound   ErrCode = "RESULT_NOT_FOUND"
	ErrFeedbackTooEarly ErrCode = "FEEDBACK_BEFORE_TEST"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrAdminKeyRequired:
		return "A valid admin key is required."
	case ErrForbidden:
		return "You do not have permission to access this resource."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	case ErrAlreadyTested:
		return "This applicant has already completed the test."
	case ErrSessionExists:
		return "A test session is already running for this applicant."
	case ErrSessionNotFound:
		return "No active test session for this applicant."
	case ErrSessionClosed:
		return "The test session has ended and no longer accepts input."
	case ErrUnknownQuestion:
		return "The question is not part of this test."
	case ErrInvalidAnswer:
		return "The answer is not valid for this question."
	case ErrInvalidIndex:
		return "Question index is out of range."
	case ErrNoQuestions:
		return "No questions are available for the test."
	case ErrResultNotFound:
		return "No test result has been recorded for this applicant."
	case ErrFeedbackTooEarly:
		return "Feedback can only be left after finishing the test."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
