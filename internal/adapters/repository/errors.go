package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrIO         = errors.New("document store i/o failed")
	ErrInvalidKey = errors.New("invalid document key")
	ErrCorrupt    = errors.New("document is corrupt")
)
