package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// MIMETypeJSON requests strict JSON output from a provider via its native
// mechanism (response_format or generation config).
const MIMETypeJSON = "application/json"

// Message is one role-tagged chat message on its way to a provider.
// Roles are "system", "user" and "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options controls generation behavior across all providers.
type Options struct {
	ResponseMIMEType string  // MIMETypeJSON to demand strict JSON output
	Temperature      float64 // 0 means provider default
	MaxTokens        int     // 0 means provider default
}

// Provider is the uniform contract every chat-completion backend implements.
// Adapters translate messages to the provider wire format and normalize
// failures; they never retry — retry policy belongs to the caller.
type Provider interface {
	// Send issues a single chat completion against the named model and
	// returns the response text.
	Send(ctx context.Context, msgs []Message, opts Options, model string) (string, error)

	// Name returns the display name of this provider (e.g. "Gemini", "Groq").
	Name() string
}

var (
	// ErrEmptyResponse is returned when a provider answers 2xx but the
	// response carries no text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrNoModelsAvailable is returned by the router when the registry has
	// no enabled models to select from.
	ErrNoModelsAvailable = errors.New("no AI models available")

	// ErrUnsupportedModelType is returned when a registry entry names a
	// provider type no adapter is registered for.
	ErrUnsupportedModelType = errors.New("unsupported model type")
)

// ConfigError names a missing configuration value, e.g.
// ConfigError("GEMINI_API_KEY is not set"). It is detected at call time, not
// at startup.
type ConfigError string

func (e ConfigError) Error() string {
	return string(e)
}

// APIError is the normalized form of a non-2xx provider response.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string // Provider-specific error code/type when parseable
	Message    string // Provider message when available, else raw body
	RetryAfter string // Retry-delay hint supplied with 429s, e.g. "21s"
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "failed to generate content"
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, msg)
}

// IsRateLimit reports whether the provider rejected the call with a 429.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// UserMessage renders a message safe to surface to the end user. Rate limits
// include the provider's retry-delay hint when one was supplied; everything
// else maps to a generic failure.
func (e *APIError) UserMessage() string {
	if e.IsRateLimit() {
		if e.RetryAfter != "" {
			return fmt.Sprintf("The AI service is rate limited. Try again in %s.", e.RetryAfter)
		}
		return "The AI service is rate limited. Try again shortly."
	}
	return "Failed to generate content."
}

// defaultHTTPClient is shared by adapters; plan generation responses can be
// large, so the timeout is generous.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 3 * time.Minute}
}
