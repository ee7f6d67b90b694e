// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/raisedev/routinely/internal/config"
)

// OpenAIClient talks to the OpenAI chat completions API (or any
// API-compatible endpoint) with JSON-schema constrained output.
type OpenAIClient struct {
	model      string
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewOpenAIClient builds a client from provider configuration.
func NewOpenAIClient(cfg config.ProviderConfig) *OpenAIClient {
	return &OpenAIClient{
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}
}

// Name implements Client.
func (c *OpenAIClient) Name() string { return "openai" }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *openAIJSONSchema `json:"json_schema,omitempty"`
}

type openAIJSONSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string, opts *GenerateOptions) (string, error) {
	timeout := c.timeout
	if opts != nil && opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	if opts != nil && len(opts.Schema) > 0 {
		reqBody.ResponseFormat = &openAIResponseFormat{
			Type: "json_schema",
			JSONSchema: &openAIJSONSchema{
				Name:   "routine_output",
				Strict: true,
				Schema: opts.Schema,
			},
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewError(KindInvalidResponse, c.Name(), "failed to encode request", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", NewError(KindNetwork, c.Name(), "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", NewError(KindTimeout, c.Name(), "request deadline exceeded", err)
		}
		return "", NewError(KindNetwork, c.Name(), "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewError(KindNetwork, c.Name(), "failed to read response body", err)
	}

	if kerr := classifyStatus(resp.StatusCode, c.Name(), body); kerr != nil {
		return "", kerr
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", NewError(KindInvalidResponse, c.Name(), "failed to decode response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", NewError(KindInvalidResponse, c.Name(), "response contains no choices", nil)
	}

	content := parsed.Choices[0].Message.Content
	if content == "" {
		return "", NewError(KindInvalidResponse, c.Name(), "response content is empty", nil)
	}
	return content, nil
}

// classifyStatus maps non-200 statuses to error kinds shared by both
// HTTP providers. Returns nil for 200.
func classifyStatus(status int, provider string, body []byte) *Error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewError(KindAuthentication, provider,
			fmt.Sprintf("authentication rejected with status %d", status), nil)
	case status == http.StatusTooManyRequests || status >= 500:
		return NewError(KindNetwork, provider,
			fmt.Sprintf("transient failure with status %d: %s", status, truncate(body, 200)), nil)
	default:
		return NewError(KindInvalidResponse, provider,
			fmt.Sprintf("unexpected status %d: %s", status, truncate(body, 200)), nil)
	}
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
