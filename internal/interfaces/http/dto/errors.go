package dto

import (
	"net/http"

	"github.com/crm/backend/internal/domain/shared"
)

// HTTP-layer error codes for failures that never reach the domain
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeBadRequest   = "BAD_REQUEST"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps domain and transport error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:          http.StatusBadRequest,
	shared.CodeAccessDenied:        http.StatusForbidden,
	shared.CodeForbiddenTransition: http.StatusForbidden,
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeConflict:            http.StatusConflict,
	shared.CodePreconditionFailed:  http.StatusPreconditionFailed,

	CodeUnauthorized: http.StatusUnauthorized,
	CodeBadRequest:   http.StatusBadRequest,
	CodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
