package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes used across the domain
const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodeForbiddenTransition = "FORBIDDEN_TRANSITION"
	CodeAccessDenied        = "ACCESS_DENIED"
	CodeConflict            = "CONFLICT"
	CodePreconditionFailed  = "PRECONDITION_FAILED"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAccessDenied        = NewDomainError(CodeAccessDenied, "Actor does not own the target record")
	ErrForbiddenTransition = NewDomainError(CodeForbiddenTransition, "Role is not permitted to reach this stage")
	ErrPreconditionFailed  = NewDomainError(CodePreconditionFailed, "Preconditions for this action do not hold")
)

// NewValidationError creates a validation error for a missing or invalid field
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// ConflictError reports a duplicate record and carries the existing one so the
// caller can act on it instead of retrying blindly.
type ConflictError struct {
	DomainError
	Existing interface{} `json:"existing,omitempty"`
}

// NewConflictError creates a conflict error carrying the conflicting record
func NewConflictError(message string, existing interface{}) *ConflictError {
	return &ConflictError{
		DomainError: DomainError{Code: CodeConflict, Message: message},
		Existing:    existing,
	}
}

// ErrorCode extracts the domain error code from an error, or empty string
func ErrorCode(err error) string {
	switch e := err.(type) {
	case *DomainError:
		return e.Code
	case *ConflictError:
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is a not-found domain error
func IsNotFound(err error) bool {
	return ErrorCode(err) == CodeNotFound
}
