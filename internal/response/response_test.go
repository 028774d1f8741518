package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/recruit-backend/internal/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, perPage, total int
		wantPages            int
	}{
		{1, 20, 0, 0},
		{1, 20, 20, 1},
		{2, 20, 21, 2},
		{1, 0, 10, 0},
	}
	for _, tt := range tests {
		p := response.NewPagination(tt.page, tt.perPage, tt.total)
		if p.TotalPages != tt.wantPages {
			t.Errorf("NewPagination(%d, %d, %d).TotalPages = %d, want %d", tt.page, tt.perPage, tt.total, p.TotalPages, tt.wantPages)
		}
	}
}

func TestFail_UsesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		response.Fail(c, http.StatusConflict, response.ErrSessionClosed)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == nil || body.Error.Code != response.ErrSessionClosed {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
	if body.Error.Message != response.GetMessage(response.ErrSessionClosed) {
		t.Errorf("message = %q", body.Error.Message)
	}
	if body.Metadata.RequestID != "req-123" {
		t.Errorf("request id = %q, want req-123", body.Metadata.RequestID)
	}
}

func TestGetMessage_Unknown(t *testing.T) {
	if got := response.GetMessage("SOMETHING_ELSE"); got != "An unexpected error occurred." {
		t.Errorf("unexpected fallback message %q", got)
	}
}

func TestRequestIDMiddleware_ReplacesUnsafeIDs(t *testing.T) {
	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		response.Success(c, http.StatusOK, nil)
	})

	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"printable", "trace-42", true},
		{"missing", "", false},
		{"newline", "abc\ninjected", false},
		{"too long", string(make([]byte, 65)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.in != "" {
				req.Header.Set(response.HeaderRequestID, tt.in)
			}
			r.ServeHTTP(w, req)

			got := w.Header().Get(response.HeaderRequestID)
			if tt.keep && got != tt.in {
				t.Errorf("request id = %q, want %q", got, tt.in)
			}
			if !tt.keep && (got == "" || got == tt.in) {
				t.Errorf("request id %q should have been regenerated", got)
			}
		})
	}
}

func TestMetadata_WithoutMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"email": "email is required"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body struct {
		Data     json.RawMessage     `json:"data"`
		Error    *response.ErrorBody `json:"error"`
		Metadata response.Metadata   `json:"metadata"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body.Data) != "null" {
		t.Errorf("data = %s, want null", body.Data)
	}
	if body.Error == nil || body.Error.Fields["email"] != "email is required" {
		t.Errorf("unexpected error body %+v", body.Error)
	}
	if id := w.Header().Get(response.HeaderRequestID); id == "" || id != body.Metadata.RequestID {
		t.Errorf("header id %q does not match body id %q", id, body.Metadata.RequestID)
	}
	ts, err := time.Parse(response.TimestampLayout, body.Metadata.Timestamp)
	if err != nil {
		t.Fatalf("timestamp %q: %v", body.Metadata.Timestamp, err)
	}
	if ts.Location() != time.UTC {
		t.Errorf("timestamp %q is not UTC", body.Metadata.Timestamp)
	}
}
