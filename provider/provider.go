package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anirudh-hegde/scribe/config"
)

// Error categories for model provider failures. Callers match with errors.Is;
// the concrete cause stays wrapped underneath. There is no retry or backoff at
// this layer.
var (
	ErrAuth      = errors.New("model provider authentication failed")
	ErrRateLimit = errors.New("model provider rate limit exceeded")
	ErrTransport = errors.New("model provider unreachable")
)

// Client represents different LLM providers
type Client string

const (
	Groq   Client = "groq"
	Gemini Client = "gemini"
)

// Provider is the interface that all LLM implementations must satisfy. The
// completion is returned raw; interpreting its structure is the caller's job.
type Provider interface {
	// Complete returns the text completion for prompt using the named model.
	Complete(ctx context.Context, prompt string, model string) (string, error)
	// Models lists the fixed, statically known model set for this provider.
	Models() []string
	// Ping issues a one-token completion to verify the credential.
	Ping(ctx context.Context) error
}

// New creates an LLM provider from configuration
func New(cfg config.LLMConfig) (Provider, error) {
	switch Client(cfg.Provider) {
	case Groq:
		return NewGroqClient(cfg.APIKey, cfg.Temperature, cfg.MaxTokens, cfg.Timeout), nil
	case Gemini:
		return NewGeminiClient(cfg.APIKey, cfg.Temperature, cfg.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// KnownModel reports whether model is in the provider's fixed model set.
func KnownModel(p Provider, model string) bool {
	for _, m := range p.Models() {
		if m == model {
			return true
		}
	}
	return false
}
