// Error types and handling
package llm

// Error types reported by this module
const (
	ErrorTypeConfiguration  = "configuration_error"
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeAPI            = "api_error"
	ErrorTypeAuthentication = "authentication_error"
	ErrorTypeRateLimit      = "rate_limit_error"
	ErrorTypePermission     = "permission_error"
	ErrorTypeNotFound       = "not_found_error"
	ErrorTypeOverloaded     = "overloaded_error"
)

// Error represents a standardized LLM error
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code,omitempty"`

	// Err is the underlying SDK error, when there is one
	Err error `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying SDK error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewUnsupportedError reports an operation the backend cannot perform
func NewUnsupportedError(provider, operation string) *Error {
	return &Error{
		Code:    "unsupported_operation",
		Message: provider + " does not support " + operation,
		Type:    ErrorTypeInvalidRequest,
	}
}
