package dto

import (
	"net/http"
	"testing"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{shared.CodeValidation, http.StatusBadRequest},
		{shared.CodeAccessDenied, http.StatusForbidden},
		{shared.CodeForbiddenTransition, http.StatusForbidden},
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeConflict, http.StatusConflict},
		{shared.CodePreconditionFailed, http.StatusPreconditionFailed},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(45, 2, 20)
	assert.Equal(t, int64(45), meta.Total)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.PageSize)
	assert.Equal(t, 3, meta.TotalPages)

	empty := NewMeta(0, 1, 20)
	assert.Equal(t, 0, empty.TotalPages)
}
