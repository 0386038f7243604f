package probes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdesk/internal/health"
)

// Generator produces a completion from a named model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// AI sends a short prompt to the primary model.
type AI struct {
	gen     Generator
	model   string
	prompt  string
	timeout time.Duration
}

// NewAI creates the probe. A nil generator reports unhealthy.
func NewAI(gen Generator, model, prompt string, timeout time.Duration) *AI {
	return &AI{gen: gen, model: model, prompt: prompt, timeout: timeout}
}

func (a *AI) Name() string { return NameAI }

func (a *AI) Check(ctx context.Context) health.ProbeResult {
	data := map[string]any{"model": a.model}
	if a.gen == nil {
		return health.Unhealthy("ai provider not configured", nil, data)
	}
	if a.model == "" {
		return health.Unhealthy("no ai model configured", nil, data)
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := a.gen.Generate(ctx, a.model, a.prompt)
	data["latency_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		return health.Unhealthy(fmt.Sprintf("ai model %s failed", a.model), err, data)
	}
	if strings.TrimSpace(text) == "" {
		return health.Unhealthy(fmt.Sprintf("ai model %s failed", a.model), errors.New("empty response"), data)
	}
	return health.Healthy(fmt.Sprintf("ai model %s responding", a.model), data)
}
