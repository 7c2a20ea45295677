package imagecache

import "errors"

// Sentinel kinds for image cache errors.
var (
	ErrBlobWrite = errors.New("blob write failed")
	ErrBlobDir   = errors.New("blob directory setup failed")
)
