package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoImageBackend = errors.New("no image backend configured")
)
