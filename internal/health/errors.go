package health

import "errors"

var (
	// ErrUnknownProbe indicates that no probe with the requested name is registered.
	ErrUnknownProbe = errors.New("unknown probe")

	// ErrDuplicateProbe indicates that two probes share a name.
	ErrDuplicateProbe = errors.New("duplicate probe name")
)
