package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/response"
	"github.com/stemsi/recruit-backend/internal/service"
	"github.com/stemsi/recruit-backend/internal/validator"
)

// ApplicantHandler handles candidate registration and the admin applicant list.
type ApplicantHandler struct {
	applicantService *service.ApplicantService
	log              zerolog.Logger
}

// NewApplicantHandler creates a new ApplicantHandler.
func NewApplicantHandler(applicantService *service.ApplicantService, log zerolog.Logger) *ApplicantHandler {
	return &ApplicantHandler{
		applicantService: applicantService,
		log:              log.With().Str("component", "applicant_handler").Logger(),
	}
}

// Register godoc
// POST /api/v1/applicants
func (h *ApplicantHandler) Register(c *gin.Context) {
	var req model.RegisterApplicantRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	applicant, err := h.applicantService.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			response.FailWithFields(c, http.StatusConflict, response.ErrConflict, map[string]string{
				"email": "email is already registered",
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to register applicant")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().Str("applicant_id", applicant.ID.String()).Str("position", applicant.Position).Msg("Applicant registered")
	response.Success(c, http.StatusCreated, gin.H{"applicant": applicant})
}

// Get godoc
// GET /api/v1/applicants/:id
func (h *ApplicantHandler) Get(c *gin.Context) {
	id, ok := applicantID(c)
	if !ok {
		return
	}

	applicant, err := h.applicantService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrApplicantNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"applicant": applicant})
}

// List godoc
// GET /api/v1/admin/applicants?status=TESTED&page=1&per_page=10
func (h *ApplicantHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)

	var status *model.ApplicantStatus
	if raw := c.Query("status"); raw != "" {
		st := model.ApplicantStatus(raw)
		switch st {
		case model.ApplicantStatusRegistered, model.ApplicantStatusTested, model.ApplicantStatusDisqualified:
			status = &st
		default:
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"status": "status must be one of REGISTERED TESTED DISQUALIFIED",
			})
			return
		}
	}

	applicants, total, err := h.applicantService.List(c.Request.Context(), status, page, perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list applicants")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if applicants == nil {
		applicants = []model.Applicant{}
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"applicants": applicants}, response.NewPagination(page, perPage, total))
}
