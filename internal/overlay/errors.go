package overlay

import "errors"

var (
	errInvalidContainer = errors.New("container size must be positive")
	errInvalidDirection = errors.New("unknown nudge direction")
	errInvalidColor     = errors.New("invalid color")
)
