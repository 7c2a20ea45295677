package registry

import "errors"

// Sentinel kinds for registration errors.
var (
	ErrRegister = errors.New("backend registration failed")
)
