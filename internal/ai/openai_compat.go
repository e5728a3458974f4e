package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// chatCompletionsClient is the shared engine behind the OpenAI-compatible
// adapters (OpenRouter, Mistral, Groq, Cerebras). These backends all speak
// the /chat/completions dialect: system messages travel inline with the
// conversation and strict JSON output is requested through response_format.
type chatCompletionsClient struct {
	name      string // Display name, also used in normalized errors
	keyEnv    string // Name of the env var holding the key, for ConfigError
	apiKey    string
	baseURL   string
	extraHdrs map[string]string
	client    *http.Client
}

func (c *chatCompletionsClient) Name() string { return c.name }

func (c *chatCompletionsClient) Send(ctx context.Context, msgs []Message, opts Options, model string) (string, error) {
	if c.apiKey == "" {
		return "", ConfigError(c.keyEnv + " is not set")
	}

	body := map[string]any{
		"model":    model,
		"messages": msgs,
	}
	if opts.ResponseMIMEType == MIMETypeJSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	if opts.Temperature > 0 {
		body["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		body["max_tokens"] = opts.MaxTokens
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ai/%s: marshal request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("ai/%s: create request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.extraHdrs {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai/%s: request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai/%s: read response: %w", c.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.normalizeError(resp, respBody)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("ai/%s: parse response: %w", c.name, err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}

func (c *chatCompletionsClient) normalizeError(resp *http.Response, body []byte) error {
	apiErr := &APIError{Provider: c.name, StatusCode: resp.StatusCode}

	var errResp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
			Code    any    `json:"code"` // String for most backends, number for some
		} `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		apiErr.Message = errResp.Error.Message
		if s, ok := errResp.Error.Code.(string); ok && s != "" {
			apiErr.Code = s
		} else {
			apiErr.Code = errResp.Error.Type
		}
	} else {
		apiErr.Message = string(body)
	}

	if apiErr.IsRateLimit() {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			apiErr.RetryAfter = ra + "s"
		}
	}
	return apiErr
}
