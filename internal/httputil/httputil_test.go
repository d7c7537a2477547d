package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestFailWritesDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
	}{
		{"explicit status", http.StatusNotFound, http.StatusNotFound},
		{"zero defaults to 500", 0, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Fail(discard, w, "Chat not found", errors.New("no rows"), tt.status)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var body ErrorBody
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, "Chat not found", body.Detail)
		})
	}
}

type signup struct {
	Username string `json:"username" validate:"required,alphanum,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"omitempty,oneof=user assistant"`
}

func TestValidationError(t *testing.T) {
	err := Validator.Struct(signup{Username: "a!", Email: "nope", Role: "system"})
	require.Error(t, err)

	w := httptest.NewRecorder()
	ValidationError(discard, w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body.Detail, "username must be alphanumeric")
	assert.Contains(t, body.Detail, "email must be a valid email address")
	assert.Contains(t, body.Detail, "role must be one of [user assistant]")
}

func TestDescribeValidationNonValidatorError(t *testing.T) {
	assert.Equal(t, "invalid request", DescribeValidation(errors.New("x")))
}

func TestRouterRecoversAndAllowsCORS(t *testing.T) {
	r := NewRouter(discard, []string{"http://localhost:3000"})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { panic("kaboom") })
	r.Get("/health", HealthHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
