package probes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdesk/internal/health"
	"newsdesk/internal/resilience/fanout"
)

// TokenChecker obtains an access token from configured credentials.
type TokenChecker interface {
	CheckToken(ctx context.Context) error
}

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// CloudData is the cloud probe's data.
type CloudData struct {
	Failures int               `json:"failures"`
	Details  map[string]string `json:"details"`
}

// Cloud runs the credential and translation checks side by side.
type Cloud struct {
	auth       TokenChecker
	translator Translator
	timeout    time.Duration
}

// NewCloud creates the probe.
func NewCloud(auth TokenChecker, translator Translator, timeout time.Duration) *Cloud {
	return &Cloud{auth: auth, translator: translator, timeout: timeout}
}

func (c *Cloud) Name() string { return NameCloud }

// Check fails if either sub-check fails. A panic in one sub-check does not
// affect the other.
func (c *Cloud) Check(ctx context.Context) health.ProbeResult {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	names := []string{"oauth", "translate"}
	outcomes := fanout.Settle(ctx, 0, []fanout.Task[struct{}]{
		func(ctx context.Context) (struct{}, error) {
			if c.auth == nil {
				return struct{}{}, errors.New("credentials not configured")
			}
			return struct{}{}, c.auth.CheckToken(ctx)
		},
		func(ctx context.Context) (struct{}, error) {
			if c.translator == nil {
				return struct{}{}, errors.New("translator not configured")
			}
			out, err := c.translator.Translate(ctx, "hello", "es")
			if err != nil {
				return struct{}{}, err
			}
			if strings.TrimSpace(out) == "" {
				return struct{}{}, errors.New("empty translation")
			}
			return struct{}{}, nil
		},
	})

	data := CloudData{Details: make(map[string]string, len(names))}
	var errs []error
	for i, o := range outcomes {
		if o.Err != nil {
			data.Failures++
			data.Details[names[i]] = o.Err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", names[i], o.Err))
			continue
		}
		data.Details[names[i]] = "ok"
	}

	if data.Failures > 0 {
		return health.Unhealthy(fmt.Sprintf("%d of %d cloud checks failed", data.Failures, len(names)), errors.Join(errs...), data)
	}
	return health.Healthy("cloud services reachable", data)
}
