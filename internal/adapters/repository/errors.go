package repository

import "errors"

// Sentinel kinds for capture store errors.
var (
	ErrOpen    = errors.New("capture store open failed")
	ErrPersist = errors.New("capture store persist failed")
	ErrLoad    = errors.New("capture store load failed")
	ErrClosed  = errors.New("capture store closed")
)
