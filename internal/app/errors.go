package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound = errors.New("not found")
	ErrNoUser   = errors.New("no acting user configured")
)
