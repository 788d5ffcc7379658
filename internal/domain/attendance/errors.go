package attendance

import "errors"

// Validation errors returned before any state is touched.
var (
	ErrUnknownMode   = errors.New("unknown mode")
	ErrInvalidChoice = errors.New("invalid week choice")
	ErrInvalidWeek   = errors.New("invalid week id")
)
