// Package llm wraps the generative text services used for scripts and titles.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"robojobs/config"
)

// ErrNotConfigured is returned when no provider has an API key
var ErrNotConfigured = errors.New("no generative text provider configured")

// Request is one prompt sent to a generative text service
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Generator produces free text from a prompt
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// New picks a provider from the config. The configured provider wins when its
// key is present; otherwise whichever key is set is used.
func New(cfg config.LLMConfig) (Generator, error) {
	provider := strings.ToLower(cfg.Provider)

	switch {
	case provider == "cohere" && cfg.CohereKey != "":
		return NewCohere(cfg.CohereKey, cfg.CohereModel), nil
	case provider != "cohere" && cfg.OpenAIKey != "":
		return NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel), nil
	case cfg.OpenAIKey != "":
		return NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel), nil
	case cfg.CohereKey != "":
		return NewCohere(cfg.CohereKey, cfg.CohereModel), nil
	}

	return nil, fmt.Errorf("%w: set OPENAI_API_KEY or COHERE_API_KEY", ErrNotConfigured)
}
