package models

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes
const (
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeUnknownDocumentType  = "UNKNOWN_DOCUMENT_TYPE"
	ErrCodeGenerationInProgress = "GENERATION_IN_PROGRESS"
	ErrCodeStepRejected         = "STEP_REJECTED"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeUpstreamError        = "UPSTREAM_ERROR"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)
