package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/repository"
	"github.com/stemsi/recruit-backend/internal/response"
	"github.com/stemsi/recruit-backend/internal/service"
	"github.com/stemsi/recruit-backend/internal/validator"
)

// FeedbackHandler handles post-test candidate feedback.
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
	log             zerolog.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService *service.FeedbackService, log zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		log:             log.With().Str("component", "feedback_handler").Logger(),
	}
}

// Submit godoc
// POST /api/v1/applicants/:id/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	var req model.SubmitFeedbackRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	fb, err := h.feedbackService.Submit(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicantNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrFeedbackBeforeTest):
			response.Fail(c, http.StatusConflict, response.ErrFeedbackTooEarly)
		default:
			h.log.Error().Err(err).Str("applicant_id", id.String()).Msg("Failed to store feedback")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"feedback": fb})
}

// List godoc
// GET /api/v1/admin/feedback?page=1&per_page=10
func (h *FeedbackHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)

	entries, total, err := h.feedbackService.List(c.Request.Context(), page, perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list feedback")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if entries == nil {
		entries = []repository.FeedbackEntry{}
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"feedback": entries}, response.NewPagination(page, perPage, total))
}
