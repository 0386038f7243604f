// Package resilience groups the fault-tolerance building blocks used when
// talking to unreliable providers:
//
//   - fallback: try an ordered list of alternatives (user agents, models) until one works
//   - fanout: run independent checks concurrently and keep every outcome, panics included
//   - circuitbreaker: stop calling a model that keeps failing
//   - retry: exponential backoff for transient errors, and the HTTPError type
//
// Usage Example:
//
//	res, err := fallback.Try(ctx, models, func(ctx context.Context, model string) (string, error) {
//	    return gen.Generate(ctx, model, prompt)
//	}, fallback.Options[string]{Delay: 500 * time.Millisecond, Operation: "ai_model"})
//
//	outcomes := fanout.Settle(ctx, 8, tasks)
package resilience
