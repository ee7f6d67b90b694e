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

// OllamaClient talks to a local Ollama server via its generate API with
// schema-constrained output.
type OllamaClient struct {
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewOllamaClient builds a client from provider configuration.
func NewOllamaClient(cfg config.ProviderConfig) *OllamaClient {
	return &OllamaClient{
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}
}

// Name implements Client.
func (c *OllamaClient) Name() string { return "ollama" }

type ollamaRequest struct {
	Model  string          `json:"model"`
	System string          `json:"system"`
	Prompt string          `json:"prompt"`
	Stream bool            `json:"stream"`
	Format json.RawMessage `json:"format,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate implements Client.
func (c *OllamaClient) Generate(ctx context.Context, systemPrompt, userPrompt string, opts *GenerateOptions) (string, error) {
	timeout := c.timeout
	if opts != nil && opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody := ollamaRequest{
		Model:  c.model,
		System: systemPrompt,
		Prompt: userPrompt,
		Stream: false,
	}
	if opts != nil && len(opts.Schema) > 0 {
		reqBody.Format = opts.Schema
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewError(KindInvalidResponse, c.Name(), "failed to encode request", err)
	}

	url := c.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", NewError(KindNetwork, c.Name(), "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

	// Ollama reports unknown models and malformed requests as 400/404.
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return "", NewError(KindInvalidResponse, c.Name(),
			fmt.Sprintf("request rejected with status %d: %s", resp.StatusCode, truncate(body, 200)), nil)
	}
	if kerr := classifyStatus(resp.StatusCode, c.Name(), body); kerr != nil {
		return "", kerr
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", NewError(KindInvalidResponse, c.Name(), "failed to decode response", err)
	}
	if parsed.Response == "" {
		return "", NewError(KindInvalidResponse, c.Name(), "response content is empty", nil)
	}
	return parsed.Response, nil
}
