// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package llm

import (
	"fmt"

	"github.com/raisedev/routinely/internal/config"
)

// New constructs a provider client by name.
func New(name string, cfg config.ProviderConfig) (Client, error) {
	switch name {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an api_key")
		}
		return NewOpenAIClient(cfg), nil
	case "ollama":
		return NewOllamaClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
