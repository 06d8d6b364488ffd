package dto

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details. Existing carries the conflicting
// record on duplicate-detection errors so clients can offer a merge.
type ErrorInfo struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Existing interface{} `json:"existing,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta builds pagination metadata from a total count and page settings
func NewMeta(total int64, page, pageSize int) *Meta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Meta{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// SuccessResponse builds a success envelope
func SuccessResponse(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// SuccessResponseWithMeta builds a success envelope with pagination metadata
func SuccessResponseWithMeta(data interface{}, meta *Meta) Response {
	return Response{Success: true, Data: data, Meta: meta}
}

// ErrorResponse builds an error envelope
func ErrorResponse(code, message string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}

// ConflictResponse builds an error envelope carrying the existing record
func ConflictResponse(code, message string, existing interface{}) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message, Existing: existing}}
}
