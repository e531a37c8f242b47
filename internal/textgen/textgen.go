// Package textgen sends a single prompt to a text-generation provider and
// returns the generated text. Calls are not retried.
package textgen

import (
	"context"
	"errors"
	"fmt"

	"crmmvp/internal/config"
)

var (
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrNotConfigured = errors.New("text generation provider is not configured")
)

type Result struct {
	OutputText string `json:"outputText"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}

// New builds the configured provider wrapped in a circuit breaker.
func New(ctx context.Context, cfg config.TextGenConfig) (Generator, error) {
	var (
		g   Generator
		err error
	)
	switch cfg.Provider {
	case "openai", "":
		g, err = NewOpenAI(cfg.OpenAIKey, cfg.Model, cfg.OpenAIBaseURL)
	case "gemini":
		g, err = NewGemini(ctx, cfg.GeminiKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown text generation provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithBreaker(g, cfg.Provider, cfg.BreakerTimeout, cfg.BreakerTrips), nil
}
