package llm

import (
	"errors"
	"fmt"
)

// Placeholder texts shown in the conversation in place of a failed reply.
const (
	NoResponseText    = "Error: No response from API"
	SomethingWentText = "Sorry, something went wrong."
)

var (
	// ErrRequestFailed covers network failures, non-2xx responses other than
	// 429 and response bodies that are not JSON.
	ErrRequestFailed = errors.New("completion request failed")

	// ErrRateLimited is returned once the endpoint keeps answering 429 after all retries.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedResponse indicates a 2xx JSON response without a usable first choice.
	ErrMalformedResponse = errors.New("no response content from API")
)

// Error kinds recorded on failed messages.
const (
	KindNetwork           = "network"
	KindRateLimited       = "rate_limited"
	KindMalformedResponse = "malformed_response"
)

// APIError represents a non-2xx response from the completion endpoint.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("completion endpoint error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("completion endpoint error (HTTP %d)", e.Status)
}

// Unwrap lets errors.Is match ErrRequestFailed (or ErrRateLimited for 429s).
func (e *APIError) Unwrap() error {
	if e.Status == 429 {
		return ErrRateLimited
	}
	return ErrRequestFailed
}

// FallbackText returns the conversation placeholder for a failed completion.
func FallbackText(err error) string {
	if errors.Is(err, ErrMalformedResponse) {
		return NoResponseText
	}
	return SomethingWentText
}

// ErrorKind returns a stable tag for err, or "" when err is nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	default:
		return KindNetwork
	}
}
