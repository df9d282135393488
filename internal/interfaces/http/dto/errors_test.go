package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"invalid input", ErrCodeInvalidInput, http.StatusBadRequest},
		{"invalid state", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"generation in progress", ErrCodeGenerationInProgress, http.StatusConflict},
		{"no case study", ErrCodeNoCaseStudy, http.StatusUnprocessableEntity},
		{"internal", ErrCodeInternal, http.StatusInternalServerError},
		{"unknown code falls back to 500", "ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"domain not found", "NOT_FOUND", ErrCodeNotFound},
		{"domain generation in progress", "GENERATION_IN_PROGRESS", ErrCodeGenerationInProgress},
		{"domain no case study", "NO_CASE_STUDY", ErrCodeNoCaseStudy},
		{"already normalized", ErrCodeConflict, ErrCodeConflict},
		{"unknown passes through", "SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.code))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "recurring_value", Message: "must be positive"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}
