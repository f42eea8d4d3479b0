// Package llm implements a paced client for OpenAI-compatible chat-completion
// endpoints.
//
// Every attempt waits on the client's Pacer before it is dispatched, so a
// request never leaves the process sooner than the configured interval after
// the previous attempt finished. A 429 answer triggers a full-interval backoff followed by a retry,
// up to a bounded number of retries. Failures are returned as typed errors;
// FallbackText converts them into the placeholder shown in the conversation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"chatstats-backend/internal/models"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel matches the model the chat UI was built against.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultMaxRetries bounds how many times a 429 answer is retried.
	DefaultMaxRetries = 3

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 60 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 4 << 20
)

// ChatMessage is a single {role, content} turn on the wire.
type ChatMessage struct {
	Role    models.Role `json:"role"`
	Content string      `json:"content"`
}

// CompletionRequest is the request body sent to /chat/completions.
type CompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Completer is the behavior the chat session needs from a client.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Client talks to the completion endpoint. Create it with NewClient.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
	httpClient *http.Client
	pacer      *Pacer
}

// NewClient creates a client with the default endpoint, model, interval and retry cap.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		maxRetries: DefaultMaxRetries,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		pacer:      NewPacer(DefaultInterval),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithModel sets the model used when a request leaves Model empty.
func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

// WithInterval replaces the pacer with one using the given spacing.
func (c *Client) WithInterval(interval time.Duration) *Client {
	c.pacer = NewPacer(interval)
	return c
}

// WithMaxRetries sets how many times a 429 answer is retried. Negative values mean zero.
func (c *Client) WithMaxRetries(n int) *Client {
	if n < 0 {
		n = 0
	}
	c.maxRetries = n
	return c
}

// WithTimeout sets the per-attempt HTTP timeout. Non-positive values keep the
// current timeout, so an attempt can never run unbounded.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Model returns the default model.
func (c *Client) Model() string {
	return c.model
}

// Interval returns the pacing interval.
func (c *Client) Interval() time.Duration {
	return c.pacer.Interval()
}

// Complete sends req and returns the content of the first choice.
//
// Errors wrap ErrRequestFailed, ErrRateLimited or ErrMalformedResponse.
// A context error is returned as-is when ctx ends while pacing or backing off.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrRequestFailed, err)
	}

	for attempt := 0; ; attempt++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return "", err
		}

		content, err := c.do(ctx, body)
		c.pacer.Done()
		if err == nil {
			return content, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusTooManyRequests {
			log.Printf("ERROR [llm] Completion failed: %v", err)
			return "", err
		}
		if attempt >= c.maxRetries {
			log.Printf("ERROR [llm] Rate limit persisted after %d retries", attempt)
			return "", fmt.Errorf("giving up after %d retries: %w", attempt, err)
		}

		log.Printf("WARN [llm] Rate limit exceeded. Waiting %s to retry (%d/%d)...", c.pacer.Interval(), attempt+1, c.maxRetries)
		if err := c.pacer.Backoff(ctx); err != nil {
			return "", err
		}
	}
}

// do performs a single HTTP attempt.
func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp apiErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Message = errResp.Error.Message
		}
		return "", apiErr
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrMalformedResponse
	}
	return parsed.Choices[0].Message.Content, nil
}
