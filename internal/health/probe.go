package health

import "context"

// Probe is an independent check of one subsystem.
// Check must honour ctx and return within its deadline; failures are reported
// in the result, never as a panic or an error.
type Probe interface {
	Name() string
	Check(ctx context.Context) ProbeResult
}

type probeFunc struct {
	name string
	fn   func(context.Context) ProbeResult
}

// NewProbe adapts a function to the Probe interface.
func NewProbe(name string, fn func(context.Context) ProbeResult) Probe {
	return probeFunc{name: name, fn: fn}
}

func (p probeFunc) Name() string { return p.name }

func (p probeFunc) Check(ctx context.Context) ProbeResult { return p.fn(ctx) }
