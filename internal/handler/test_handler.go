package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/response"
	"github.com/stemsi/recruit-backend/internal/service"
	"github.com/stemsi/recruit-backend/internal/validator"
)

// TestHandler exposes the proctored test session over plain HTTP.
// The WebSocket stream offers the same actions plus pushed notices.
type TestHandler struct {
	sessions *service.TestSessionService
	log      zerolog.Logger
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(sessions *service.TestSessionService, log zerolog.Logger) *TestHandler {
	return &TestHandler{
		sessions: sessions,
		log:      log.With().Str("component", "test_handler").Logger(),
	}
}

// Start godoc
// POST /api/v1/applicants/:id/test/start
func (h *TestHandler) Start(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	started, err := h.sessions.Start(c.Request.Context(), id)
	if err != nil {
		status, code := sessionErrorCode(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("applicant_id", id.String()).Msg("Failed to start test")
		}
		response.Fail(c, status, code)
		return
	}

	h.log.Info().Str("applicant_id", id.String()).Int("duration_seconds", started.DurationSeconds).Msg("Test started")
	response.Success(c, http.StatusCreated, started)
}

// State godoc
// GET /api/v1/applicants/:id/test
func (h *TestHandler) State(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	view, err := h.sessions.State(id)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// SelectAnswer godoc
// POST /api/v1/applicants/:id/test/answers
func (h *TestHandler) SelectAnswer(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, err := h.sessions.SelectAnswer(c.Request.Context(), id, req.QuestionID, req.Value)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": st})
}

// Navigate godoc
// POST /api/v1/applicants/:id/test/navigate
func (h *TestHandler) Navigate(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, err := h.sessions.Navigate(id, req.Index)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": st})
}

// ReportViolation godoc
// POST /api/v1/applicants/:id/test/violations
func (h *TestHandler) ReportViolation(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	var req model.ReportViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, err := h.sessions.ReportViolation(id, model.ViolationKind(req.Kind))
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": st})
}

// Submit godoc
// POST /api/v1/applicants/:id/test/submit
func (h *TestHandler) Submit(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	result, err := h.sessions.Submit(id)
	if err != nil {
		failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}
