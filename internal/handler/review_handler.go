package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/response"
	"github.com/stemsi/recruit-backend/internal/service"
)

// ReviewHandler serves an applicant's normalized result to recruiters.
type ReviewHandler struct {
	reviewService *service.ReviewService
	log           zerolog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *service.ReviewService, log zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		log:           log.With().Str("component", "review_handler").Logger(),
	}
}

// GetReview godoc
// GET /api/v1/admin/applicants/:id/review
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrApplicantNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Str("applicant_id", id.String()).Msg("Failed to build review")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, review)
}
