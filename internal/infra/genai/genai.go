// Package genai sends single-turn prompts to a hosted generative model.
//
// Two backends are supported, Anthropic and OpenAI, selected by provider name.
// The Generator returned by New runs every call through a circuit breaker
// keyed by model, so a model that keeps failing is skipped without spending a
// request on it.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsdesk/internal/resilience/circuitbreaker"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var (
	// ErrEmptyResponse is returned when the provider answered without any text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrCircuitOpen is returned when the model's breaker rejected the call.
	ErrCircuitOpen = errors.New("model circuit open")

	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown ai provider")

	// ErrMissingAPIKey is returned by New when the provider's key is empty.
	ErrMissingAPIKey = errors.New("ai api key is not configured")
)

// Generator produces a text completion for prompt using model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string // empty uses the provider default
	MaxTokens int
	Timeout   time.Duration // per call; zero means no extra deadline
}

// New returns the backend for cfg.Provider wrapped with per-model breakers.
func New(cfg Config) (Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: provider %s", ErrMissingAPIKey, cfg.Provider)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 64
	}

	var backend Generator
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic:
		backend = NewAnthropic(cfg.APIKey, cfg.BaseURL, maxTokens)
	case ProviderOpenAI:
		backend = NewOpenAI(cfg.APIKey, cfg.BaseURL, maxTokens)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	return WithBreakers(backend, circuitbreaker.NewGroup(circuitbreaker.ModelConfig), cfg.Timeout), nil
}

// Guarded wraps a Generator with one circuit breaker per model and an
// optional per-call timeout.
type Guarded struct {
	next     Generator
	breakers *circuitbreaker.Group
	timeout  time.Duration
}

// WithBreakers wraps next.
func WithBreakers(next Generator, breakers *circuitbreaker.Group, timeout time.Duration) *Guarded {
	return &Guarded{next: next, breakers: breakers, timeout: timeout}
}

// Generate calls the wrapped backend through the model's breaker.
func (g *Guarded) Generate(ctx context.Context, model, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cb := g.breakers.Get(model)
	text, err := circuitbreaker.Execute(cb, func() (string, error) {
		return g.next.Generate(ctx, model, prompt)
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			slog.WarnContext(ctx, "model circuit breaker open, request rejected",
				slog.String("model", model),
				slog.String("state", cb.State().String()))
			return "", fmt.Errorf("%w: %s: %w", ErrCircuitOpen, model, err)
		}
		return "", err
	}
	return text, nil
}

// BreakerStates reports the breaker state of every model called so far.
func (g *Guarded) BreakerStates() map[string]string {
	return g.breakers.States()
}
