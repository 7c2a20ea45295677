package imgbackend

import "errors"

// Sentinel kinds for backend client errors.
var (
	ErrBackend = errors.New("image backend request failed")
	ErrStatus  = errors.New("image backend returned unexpected status")
)
