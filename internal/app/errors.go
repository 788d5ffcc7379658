package service

import "errors"

var (
	// ErrForbidden is returned when a non-owner calls an owner-only operation.
	ErrForbidden = errors.New("only the owner can do this")
	// ErrBackupFailed is returned by Reset when the backup could not be taken;
	// the dataset is left untouched.
	ErrBackupFailed = errors.New("backup failed")
	// ErrInvalidAction is returned for action strings no button produces.
	ErrInvalidAction = errors.New("invalid action")
	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNotStarted is returned when posting a live message before Start.
	ErrNotStarted = errors.New("service not started")
)
