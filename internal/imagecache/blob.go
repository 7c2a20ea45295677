package imagecache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Blob is an image payload materialized as a local file. It stands in for
// a browser blob URL: the file URL stays valid until Release removes the
// backing file. Release is safe to call more than once; the file is
// removed exactly once.
type Blob struct {
	path    string
	url     string
	release sync.Once
}

// newBlob writes data to a file under dir and returns the owning Blob.
func newBlob(dir, key string, data []byte, contentType string) (*Blob, error) {
	path := filepath.Join(dir, key+extForContentType(contentType))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlobWrite, err)
	}
	return &Blob{path: path, url: "file://" + path}, nil
}

// URL returns the resolvable reference to the blob's backing file.
func (b *Blob) URL() string {
	return b.url
}

// Release removes the backing file. Idempotent.
func (b *Blob) Release() {
	b.release.Do(func() {
		_ = os.Remove(b.path)
	})
}

func extForContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".img"
	}
}
