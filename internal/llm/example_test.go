package llm

import (
	"fmt"
)

// This is an example of turning completion errors into the text shown in the
// conversation.

func ExampleFallbackText() {
	fmt.Println(FallbackText(ErrMalformedResponse))
	fmt.Println(FallbackText(&APIError{Status: 500}))
	fmt.Println(FallbackText(fmt.Errorf("giving up after 3 retries: %w", &APIError{Status: 429})))
	// Output:
	// Error: No response from API
	// Sorry, something went wrong.
	// Sorry, something went wrong.
}

func ExampleErrorKind() {
	err := fmt.Errorf("giving up after 3 retries: %w", &APIError{Status: 429, Message: "slow down"})
	fmt.Println(ErrorKind(err))
	fmt.Println(err)
	// Output:
	// rate_limited
	// giving up after 3 retries: completion endpoint error (HTTP 429): slow down
}
