// Package imagecache resolves (pokemon id, image type) pairs to
// displayable image references, hiding backend latency and failure behind
// a local TTL cache and a guaranteed-safe placeholder.
package imagecache

import (
	"context"
	"fmt"
	"os"

	"github.com/pokeatlas/syncbridge/internal/adapters/imgbackend"
	"github.com/pokeatlas/syncbridge/internal/domain/model"
	"github.com/pokeatlas/syncbridge/internal/domain/types"
	"github.com/pokeatlas/syncbridge/pkg/logger"
	"github.com/pokeatlas/syncbridge/pkg/metrics"
)

// Fetcher is the backend surface the mediator depends on.
// *imgbackend.Client satisfies it.
type Fetcher interface {
	FetchImage(ctx context.Context, pokemonID int, imageType model.ImageType) (imgbackend.Image, error)
	ImageInfo(ctx context.Context, pokemonID int) (types.PokemonImageInfo, error)
	Preload(ctx context.Context, pokemonIDs []int, imageTypes []model.ImageType) error
	CacheStats(ctx context.Context) (types.ImageCacheStats, error)
}

// Mediator owns the local image cache and its blob files. Concurrent
// GetImageURL calls for the same cold key are not coalesced: each misses
// independently and the last writer wins, which is wasteful but correct.
type Mediator struct {
	client  Fetcher
	cache   *cache
	blobDir string
	ownDir  bool
	log     logger.Logger
}

// NewMediator creates a Mediator over the given backend client.
func NewMediator(client Fetcher, opts ...Option) (*Mediator, error) {
	m := &Mediator{
		client: client,
	}

	cfg := mediatorConfig{ttl: DefaultTTL}
	for _, opt := range opts {
		opt(m, &cfg)
	}

	m.cache = newCache(cfg.ttl, cfg.now)

	if m.log == nil {
		m.log = logger.Get().Named("imagecache")
	}

	if m.blobDir == "" {
		dir, err := os.MkdirTemp("", "syncbridge-images-*")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBlobDir, err)
		}
		m.blobDir = dir
		m.ownDir = true
	} else if err := os.MkdirAll(m.blobDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBlobDir, err)
	}

	return m, nil
}

// GetImageURL resolves an image reference for the pokemon/variant pair.
// It never returns an error: invalid input, cache misses that fail at the
// backend, and backend placeholder signals all resolve to a deterministic
// placeholder URI. An empty imageType selects the default variant.
func (m *Mediator) GetImageURL(ctx context.Context, pokemonID int, imageType model.ImageType) string {
	if imageType == "" {
		imageType = model.DefaultImageType
	}

	// Input violations short-circuit before any network call.
	if !model.ValidPokemonID(pokemonID) || !imageType.Valid() {
		metrics.RecordPlaceholderFallback()
		return PlaceholderURL(pokemonID, imageType)
	}

	key := model.ImageCacheKey(pokemonID, imageType)
	if url, ok := m.cache.get(key); ok {
		metrics.RecordImageCacheHit()
		return url
	}
	metrics.RecordImageCacheMiss()

	img, err := m.client.FetchImage(ctx, pokemonID, imageType)
	if err != nil {
		m.log.Warn(ctx, "image fetch failed, serving placeholder",
			logger.Int("pokemon_id", pokemonID),
			logger.String("image_type", string(imageType)),
			logger.Error(err),
		)
		metrics.RecordPlaceholderFallback()
		return PlaceholderURL(pokemonID, imageType)
	}

	// A backend placeholder is a valid "no real asset yet" answer. It is
	// served but never cached, so a later real asset is not masked.
	if img.Placeholder {
		metrics.RecordPlaceholderFallback()
		return PlaceholderURL(pokemonID, imageType)
	}

	blob, err := newBlob(m.blobDir, key, img.Data, img.ContentType)
	if err != nil {
		m.log.Warn(ctx, "blob materialization failed, serving placeholder",
			logger.Int("pokemon_id", pokemonID),
			logger.Error(err),
		)
		metrics.RecordPlaceholderFallback()
		return PlaceholderURL(pokemonID, imageType)
	}

	m.cache.put(key, blob.URL(), blob)
	return blob.URL()
}

// GetImageInfo fetches per-variant metadata from the backend. Unlike
// GetImageURL this is a diagnostic path, so errors propagate.
func (m *Mediator) GetImageInfo(ctx context.Context, pokemonID int) (types.PokemonImageInfo, error) {
	return m.client.ImageInfo(ctx, pokemonID)
}

// PreloadImages asks the backend to warm its cache for a batch of ids.
// Request-level errors propagate; per-image failures do not surface here.
func (m *Mediator) PreloadImages(ctx context.Context, pokemonIDs []int, imageTypes []model.ImageType) error {
	return m.client.Preload(ctx, pokemonIDs, imageTypes)
}

// LoadCacheStats fetches backend cache statistics. A failure degrades to
// zeroed stats because this feeds a non-critical dashboard.
func (m *Mediator) LoadCacheStats(ctx context.Context) types.ImageCacheStats {
	stats, err := m.client.CacheStats(ctx)
	if err != nil {
		m.log.Warn(ctx, "cache stats fetch failed, serving zeroes", logger.Error(err))
		return types.ImageCacheStats{}
	}
	return stats
}

// ClearLocalCache releases every held blob and empties the cache.
// Idempotent.
func (m *Mediator) ClearLocalCache() {
	m.cache.clear()
}

// LocalCacheStats reports size and age bounds of the in-memory cache.
func (m *Mediator) LocalCacheStats() types.LocalCacheStats {
	return m.cache.stats()
}

// Close clears the cache and removes the blob directory if the mediator
// created it.
func (m *Mediator) Close() error {
	m.cache.clear()
	if m.ownDir {
		return os.RemoveAll(m.blobDir)
	}
	return nil
}
