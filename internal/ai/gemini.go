package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements Provider for the Google Gemini generateContent
// API. Unlike the OpenAI-compatible backends, Gemini takes the system
// message in a dedicated systemInstruction field and tags assistant turns
// with the role "model".
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGeminiProvider creates a Gemini provider. The key may be empty; the
// first Send will then fail with a named configuration error.
func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: defaultGeminiBaseURL,
		client:  defaultHTTPClient(),
	}
}

func (p *GeminiProvider) Name() string { return "Gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

func (p *GeminiProvider) Send(ctx context.Context, msgs []Message, opts Options, model string) (string, error) {
	if p.apiKey == "" {
		return "", ConfigError("GEMINI_API_KEY is not set")
	}

	var system *geminiContent
	var contents []geminiContent
	for _, m := range msgs {
		switch m.Role {
		case "system":
			// Gemini separates the system prompt from the conversation.
			if system == nil {
				system = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
			} else {
				system.Parts = append(system.Parts, geminiPart{Text: m.Content})
			}
		case "assistant":
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}

	generationConfig := map[string]any{}
	if opts.ResponseMIMEType != "" {
		generationConfig["responseMimeType"] = opts.ResponseMIMEType
	}
	if opts.Temperature > 0 {
		generationConfig["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		generationConfig["maxOutputTokens"] = opts.MaxTokens
	}

	body := map[string]any{"contents": contents}
	if system != nil {
		body["systemInstruction"] = system
	}
	if len(generationConfig) > 0 {
		body["generationConfig"] = generationConfig
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ai/gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("ai/gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai/gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai/gemini: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", p.normalizeError(resp.StatusCode, respBody)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("ai/gemini: parse response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (p *GeminiProvider) normalizeError(status int, body []byte) error {
	apiErr := &APIError{Provider: p.Name(), StatusCode: status}

	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		apiErr.Code = errResp.Error.Status
		apiErr.Message = errResp.Error.Message
		for _, d := range errResp.Error.Details {
			if d.RetryDelay != "" {
				apiErr.RetryAfter = d.RetryDelay
			}
		}
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}
