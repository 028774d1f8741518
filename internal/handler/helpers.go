package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/recruit-backend/internal/proctor"
	"github.com/stemsi/recruit-backend/internal/response"
	"github.com/stemsi/recruit-backend/internal/service"
)

const maxPerPage = 100

// pageParams reads page and per_page, clamped to sane bounds.
func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// applicantID parses the :id path parameter, writing a 400 on failure.
func applicantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// sessionErrorCode maps test session errors to a status and error code.
func sessionErrorCode(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrApplicantNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, service.ErrAlreadyTested):
		return http.StatusConflict, response.ErrAlreadyTested
	case errors.Is(err, service.ErrSessionExists):
		return http.StatusConflict, response.ErrSessionExists
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, response.ErrSessionNotFound
	case errors.Is(err, proctor.ErrSessionClosed):
		return http.StatusConflict, response.ErrSessionClosed
	case errors.Is(err, proctor.ErrUnknownQuestion):
		return http.StatusBadRequest, response.ErrUnknownQuestion
	case errors.Is(err, proctor.ErrInvalidAnswer):
		return http.StatusBadRequest, response.ErrInvalidAnswer
	case errors.Is(err, proctor.ErrInvalidIndex):
		return http.StatusBadRequest, response.ErrInvalidIndex
	case errors.Is(err, proctor.ErrNoQuestions):
		return http.StatusServiceUnavailable, response.ErrNoQuestions
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

func failSession(c *gin.Context, err error) {
	status, code := sessionErrorCode(err)
	response.Fail(c, status, code)
}
