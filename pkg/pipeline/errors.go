package pipeline

import "errors"

var (
	// ErrUnknownOp is returned for a step whose op is not recognised.
	ErrUnknownOp = errors.New("pipeline: unknown op")

	// ErrEmpty is returned when a pipeline has no steps.
	ErrEmpty = errors.New("pipeline: no steps")
)
