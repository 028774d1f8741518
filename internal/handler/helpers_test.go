package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/recruit-backend/internal/proctor"
	"github.com/stemsi/recruit-backend/internal/response"
	"github.com/stemsi/recruit-backend/internal/service"
)

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, 10},
		{"?page=3&per_page=25", 3, 25},
		{"?page=0&per_page=0", 1, 10},
		{"?page=-2&per_page=500", 1, maxPerPage},
		{"?page=abc&per_page=xyz", 1, 10},
	}
	for _, tt := range tests {
		c, _ := testContext("/" + tt.query)
		page, perPage := pageParams(c)
		if page != tt.page || perPage != tt.limit {
			t.Errorf("pageParams(%q) = %d, %d; want %d, %d", tt.query, page, perPage, tt.page, tt.limit)
		}
	}
}

func TestApplicantID(t *testing.T) {
	c, w := testContext("/")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	if _, ok := applicantID(c); ok {
		t.Fatal("expected parse failure")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	c, _ = testContext("/")
	c.Params = gin.Params{{Key: "id", Value: "6f1c1a52-1f7e-4f3f-9d37-2f0a6f7b9c11"}}
	if id, ok := applicantID(c); !ok || id.String() != "6f1c1a52-1f7e-4f3f-9d37-2f0a6f7b9c11" {
		t.Errorf("applicantID = %s, %v", id, ok)
	}
}

func TestSessionErrorCode(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{service.ErrApplicantNotFound, http.StatusNotFound, response.ErrNotFound},
		{service.ErrAlreadyTested, http.StatusConflict, response.ErrAlreadyTested},
		{service.ErrSessionExists, http.StatusConflict, response.ErrSessionExists},
		{service.ErrSessionNotFound, http.StatusNotFound, response.ErrSessionNotFound},
		{fmt.Errorf("answer: %w", proctor.ErrSessionClosed), http.StatusConflict, response.ErrSessionClosed},
		{proctor.ErrUnknownQuestion, http.StatusBadRequest, response.ErrUnknownQuestion},
		{proctor.ErrInvalidAnswer, http.StatusBadRequest, response.ErrInvalidAnswer},
		{proctor.ErrInvalidIndex, http.StatusBadRequest, response.ErrInvalidIndex},
		{proctor.ErrNoQuestions, http.StatusServiceUnavailable, response.ErrNoQuestions},
		{errors.New("redis down"), http.StatusInternalServerError, response.ErrInternal},
	}
	for _, tt := range tests {
		status, code := sessionErrorCode(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("sessionErrorCode(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m 0s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Second, "2h 0m 5s"},
		{49*time.Hour + 61*time.Minute, "2d 2h 1m 0s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
