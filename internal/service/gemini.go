package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"dantechat/internal/config"
)

// Upstream failure kinds. Every failed call is classified into exactly one of
// these so the rotation policy applies a single retry predicate everywhere.
var (
	ErrRateLimited       = errors.New("upstream rate limited")
	ErrUnauthorized      = errors.New("upstream rejected credential")
	ErrModelUnavailable  = errors.New("upstream model unavailable")
	ErrMalformedResponse = errors.New("upstream response malformed")
	ErrTransport         = errors.New("upstream transport error")
)

// IsRetryable reports whether the next credential should be tried after this
// failure. A missing model affects every credential equally, so it is not
// worth rotating for.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, ErrTransport)
}

// GeminiClient issues generateContent calls against the Gemini API, one call
// per credential attempt.
type GeminiClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewGeminiClient creates a client for the configured endpoint
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt as the sole message content using the given
// credential and returns the textual answer. Failures come back as one of
// the classified error kinds.
func (c *GeminiClient) Generate(ctx context.Context, prompt, credential string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.endpoint, credential)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: status %d", ErrModelUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, respBody)
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(result.Candidates) == 0 ||
		len(result.Candidates[0].Content.Parts) == 0 ||
		result.Candidates[0].Content.Parts[0].Text == "" {
		return "", fmt.Errorf("%w: no candidate text", ErrMalformedResponse)
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}
