package mockwrap

import (
	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

// Mode is the calling convention of the wrapped client
type Mode int

const (
	// ModeSync clients complete every call in the calling goroutine
	ModeSync Mode = iota
	// ModeAsync clients return futures that callers await
	ModeAsync
)

func (m Mode) String() string {
	switch m {
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	default:
		return "unknown"
	}
}

// ErrMissingCredential is returned when the wrapped client carries no credential
var ErrMissingCredential = &llm.Error{
	Code:    "missing_credential",
	Message: "client credential is required",
	Type:    llm.ErrorTypeConfiguration,
}

// ErrMissingBackend is returned when there is no client to wrap
var ErrMissingBackend = &llm.Error{
	Code:    "missing_backend",
	Message: "backend client is required",
	Type:    llm.ErrorTypeConfiguration,
}

// Handle records what the wrapper learned about its client at construction.
// It is immutable.
type Handle struct {
	credential string
	mode       Mode
	testMode   bool
}

// NewHandle classifies credential once and captures the calling convention
func NewHandle(credential string, mode Mode) (*Handle, error) {
	if credential == "" {
		return nil, ErrMissingCredential
	}
	return &Handle{
		credential: credential,
		mode:       mode,
		testMode:   IsTestCredential(credential),
	}, nil
}

// Credential returns the credential seen at construction
func (h *Handle) Credential() string {
	return h.credential
}

// Mode returns the calling convention
func (h *Handle) Mode() Mode {
	return h.mode
}

// TestMode reports whether calls are answered synthetically
func (h *Handle) TestMode() bool {
	return h.testMode
}
