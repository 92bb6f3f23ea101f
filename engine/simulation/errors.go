package simulation

import "errors"

var (
	// ErrConfiguration is returned when a simulation is built from an invalid channel set,
	// e.g. a dependency on a channel that was never declared.
	ErrConfiguration = errors.New("simulation: invalid configuration")

	// ErrUnknownChannel is returned when a channel name was never registered.
	ErrUnknownChannel = errors.New("simulation: unknown channel")

	// ErrReleased is returned by every operation on a simulation after Release.
	ErrReleased = errors.New("simulation: released")
)
