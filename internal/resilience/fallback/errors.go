package fallback

import (
	"errors"
	"fmt"
)

var (
	// ErrAllCandidatesExhausted indicates that every candidate was tried and failed.
	ErrAllCandidatesExhausted = errors.New("all candidates exhausted")

	// ErrBlocked marks an attempt whose value was rejected by the blocked classifier.
	ErrBlocked = errors.New("blocked response")

	// ErrNoCandidates indicates Try was called with an empty candidate list.
	ErrNoCandidates = errors.New("no candidates configured")
)

// ExhaustedError is returned by Try when no candidate succeeded.
// It matches ErrAllCandidatesExhausted with errors.Is and unwraps to the last
// attempt's error.
type ExhaustedError[C any] struct {
	Attempts []Attempt[C]
	Last     error
}

// Error implements the error interface.
func (e *ExhaustedError[C]) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrAllCandidatesExhausted, len(e.Attempts), e.Last)
}

// Is reports whether target is ErrAllCandidatesExhausted.
func (e *ExhaustedError[C]) Is(target error) bool {
	return target == ErrAllCandidatesExhausted
}

// Unwrap returns the last attempt's error.
func (e *ExhaustedError[C]) Unwrap() error {
	return e.Last
}

// Candidates returns the candidates in the order they were attempted.
func (e *ExhaustedError[C]) Candidates() []C {
	out := make([]C, len(e.Attempts))
	for i, a := range e.Attempts {
		out[i] = a.Candidate
	}
	return out
}
