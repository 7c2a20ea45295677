// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pokeatlas/syncbridge/internal/adapters/imgbackend"
	"github.com/pokeatlas/syncbridge/internal/adapters/registry"
	repository "github.com/pokeatlas/syncbridge/internal/adapters/repository"
	"github.com/pokeatlas/syncbridge/internal/domain/dedupe"
	"github.com/pokeatlas/syncbridge/internal/domain/model"
	"github.com/pokeatlas/syncbridge/internal/domain/types"
	"github.com/pokeatlas/syncbridge/internal/imagecache"
	"github.com/pokeatlas/syncbridge/pkg/logger"
	"github.com/pokeatlas/syncbridge/pkg/metrics"
)

// Service owns the capture buffer and the image mediator and exposes the
// operations the HTTP API depends on.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	matcher  dedupe.Matcher
	mediator *imagecache.Mediator

	// Configuration
	clientID        string
	clientURL       string
	version         string
	dataPath        string
	dedupeWindow    time.Duration
	backendURL      string
	imageBackendURL string
	imageCacheTTL   time.Duration
	imageTimeout    time.Duration
	imageRetries    int
	registerRetry   time.Duration

	// State
	started bool
	now     func() time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		clientID:      "client_" + uuid.NewString(),
		clientURL:     "http://localhost:3001",
		version:       "dev",
		dedupeWindow:  dedupe.DefaultWindow,
		imageCacheTTL: imagecache.DefaultTTL,
		imageRetries:  -1, // client default
		now:           time.Now,
		logger:        nil, // resolved on Start
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting sync bridge service...",
		logger.String("client_id", s.clientID),
		logger.String("data_path", s.dataPath),
	)

	if s.store == nil {
		store, err := repository.NewBoltStore(ctx, repository.WithPath(s.dataPath))
		switch {
		case err == nil:
			s.store = store
		case errors.Is(err, repository.ErrLoad):
			// Corrupt entries were skipped; the store is usable.
			// Availability over durability, but the condition is logged
			// so it can be alerted on.
			s.logger.Warn(ctx, "capture store loaded with corrupt entries", logger.Error(err))
			s.store = store
		default:
			// The persisted file cannot be opened at all. Keep serving
			// from memory; captures buffered from here on are lost on
			// restart.
			s.logger.Error(ctx, "capture store open failed, running memory-only", logger.Error(err))
			memStore, memErr := repository.NewBoltStore(ctx)
			if memErr != nil {
				return memErr
			}
			s.store = memStore
		}
	}

	if s.matcher == nil {
		s.matcher = dedupe.NewWindowMatcher(
			dedupe.WithWindow(s.dedupeWindow),
		)
	}

	if s.mediator == nil && s.imageBackendURL != "" {
		clientOpts := []imgbackend.Option{
			imgbackend.WithLogger(s.logger.Named("imgbackend")),
		}
		if s.imageTimeout > 0 {
			clientOpts = append(clientOpts, imgbackend.WithTimeout(s.imageTimeout))
		}
		if s.imageRetries >= 0 {
			clientOpts = append(clientOpts, imgbackend.WithMaxRetries(s.imageRetries))
		}
		mediator, err := imagecache.NewMediator(
			imgbackend.New(s.imageBackendURL, clientOpts...),
			imagecache.WithTTL(s.imageCacheTTL),
			imagecache.WithLogger(s.logger.Named("imagecache")),
		)
		if err != nil {
			return err
		}
		s.mediator = mediator
	}

	if s.backendURL != "" {
		registrarOpts := []registry.Option{
			registry.WithLogger(s.logger.Named("registry")),
		}
		if s.registerRetry > 0 {
			registrarOpts = append(registrarOpts, registry.WithRetryInterval(s.registerRetry))
		}
		registrar := registry.New(s.backendURL, s.clientID, s.clientURL, s.version, registrarOpts...)
		go registrar.Run(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "sync bridge service started",
		logger.Int("buffered_captures", s.store.Count(ctx)),
		logger.Duration("dedupe_window", s.matcher.Window()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping sync bridge service...")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "capture store close failed", logger.Error(err))
		}
	}
	if s.mediator != nil {
		if err := s.mediator.Close(); err != nil {
			s.logger.Warn(ctx, "image mediator close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "sync bridge service stopped")
}

// AddCapture buffers a capture/release event unless the dedup window
// flags it as a repeat. Returns the stored (or matched) record and
// whether it was a duplicate.
func (s *Service) AddCapture(ctx context.Context, pokemonID int, pokemonName string, action model.Action, removed bool) (model.CaptureRecord, bool, error) {
	// The duplicate check and the append must form one critical section:
	// the UI double-tap this window guards against arrives as two
	// concurrent requests, and both would pass the check otherwise.
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if dup, found := s.matcher.FindDuplicate(ctx, s.store.All(ctx), pokemonID, action, removed, now); found {
		s.logger.Debug(ctx, "duplicate capture suppressed",
			logger.Int("pokemon_id", pokemonID),
			logger.String("action", string(dup.Action)),
			logger.Bool("removed", removed),
		)
		metrics.RecordCaptureDuplicate()
		return dup, true, nil
	}

	rec := model.NewCapture(pokemonID, pokemonName, action, removed, s.version, now)
	if err := s.store.Append(ctx, rec); err != nil {
		if !errors.Is(err, repository.ErrPersist) {
			return model.CaptureRecord{}, false, err
		}
		// The record is buffered in memory; losing durability is logged
		// but must not fail the UI call.
		s.logger.Warn(ctx, "capture persisted in memory only", logger.Error(err))
	}

	metrics.RecordCaptureAdded()
	metrics.UpdatePendingCaptures(s.store.PendingCount(ctx))

	s.logger.Info(ctx, "capture buffered",
		logger.String("capture_id", rec.CaptureID),
		logger.Int("pokemon_id", pokemonID),
		logger.String("action", string(rec.Action)),
	)
	return rec, false, nil
}

// Pending returns unsynced captures for the backend poller, optionally
// filtered to records newer than since.
func (s *Service) Pending(ctx context.Context, since *time.Time) types.SyncData {
	metrics.RecordSyncPoll()
	captures := s.store.Pending(ctx, since)
	return types.SyncData{
		UserID:       model.DefaultUserID,
		ClientURL:    s.clientURL,
		Captures:     captures,
		LastSync:     s.store.LastSync(ctx),
		TotalPending: len(captures),
	}
}

// AllCaptures returns the full history for full-resync scenarios.
func (s *Service) AllCaptures(ctx context.Context) types.AllCaptures {
	captures := s.store.All(ctx)
	return types.AllCaptures{
		UserID:        model.DefaultUserID,
		ClientURL:     s.clientURL,
		Captures:      captures,
		LastSync:      s.store.LastSync(ctx),
		TotalCaptures: len(captures),
	}
}

// Acknowledge marks the given capture ids as synced. Unknown ids are
// ignored. Returns the number of records newly marked.
func (s *Service) Acknowledge(ctx context.Context, captureIDs []string) (int, error) {
	count, err := s.store.MarkSynced(ctx, captureIDs, s.now())
	if err != nil && errors.Is(err, repository.ErrPersist) {
		s.logger.Warn(ctx, "acknowledgment persisted in memory only", logger.Error(err))
		err = nil
	}
	if err != nil {
		return count, err
	}

	metrics.RecordCapturesAcknowledged(count)
	metrics.UpdatePendingCaptures(s.store.PendingCount(ctx))

	s.logger.Info(ctx, "captures acknowledged",
		logger.Int("requested", len(captureIDs)),
		logger.Int("marked", count),
	)
	return count, nil
}

// Reload rebuilds buffer state from the persisted store.
func (s *Service) Reload(ctx context.Context) (types.Stats, error) {
	if err := s.store.Reload(ctx); err != nil {
		if errors.Is(err, repository.ErrLoad) {
			s.logger.Warn(ctx, "reload recovered with corrupt entries skipped", logger.Error(err))
		} else {
			return types.Stats{}, err
		}
	}
	return s.Stats(ctx), nil
}

// Health returns static identity/status info for service discovery.
func (s *Service) Health(ctx context.Context) types.Health {
	return types.Health{
		Status:    "ok",
		ClientID:  s.clientID,
		ClientURL: s.clientURL,
		Timestamp: s.now(),
		Version:   s.version,
	}
}

// Stats summarizes buffer state and refreshes the related gauges.
func (s *Service) Stats(ctx context.Context) types.Stats {
	total := s.store.Count(ctx)
	pending := s.store.PendingCount(ctx)

	metrics.UpdateTotalCaptures(total)
	metrics.UpdatePendingCaptures(pending)

	return types.Stats{
		TotalCaptures:  total,
		PendingSync:    pending,
		SyncedCaptures: total - pending,
		LastSync:       s.store.LastSync(ctx),
		ClientID:       s.clientID,
	}
}

// GetImageURL resolves an image reference, falling back to a placeholder
// when no mediator is configured.
func (s *Service) GetImageURL(ctx context.Context, pokemonID int, imageType model.ImageType) string {
	if s.mediator == nil {
		if imageType == "" {
			imageType = model.DefaultImageType
		}
		metrics.RecordPlaceholderFallback()
		return imagecache.PlaceholderURL(pokemonID, imageType)
	}
	return s.mediator.GetImageURL(ctx, pokemonID, imageType)
}

// GetImageInfo proxies the backend's per-variant metadata.
func (s *Service) GetImageInfo(ctx context.Context, pokemonID int) (types.PokemonImageInfo, error) {
	if s.mediator == nil {
		return types.PokemonImageInfo{}, ErrNoImageBackend
	}
	return s.mediator.GetImageInfo(ctx, pokemonID)
}

// PreloadImages forwards a cache-warming request to the backend.
func (s *Service) PreloadImages(ctx context.Context, pokemonIDs []int, imageTypes []model.ImageType) error {
	if s.mediator == nil {
		return ErrNoImageBackend
	}
	return s.mediator.PreloadImages(ctx, pokemonIDs, imageTypes)
}

// ImageCacheStats returns backend-side and local cache statistics.
func (s *Service) ImageCacheStats(ctx context.Context) (types.ImageCacheStats, types.LocalCacheStats) {
	if s.mediator == nil {
		return types.ImageCacheStats{}, types.LocalCacheStats{}
	}
	return s.mediator.LoadCacheStats(ctx), s.mediator.LocalCacheStats()
}

// ClearImageCache empties the local cache, releasing every blob.
func (s *Service) ClearImageCache(ctx context.Context) {
	if s.mediator != nil {
		s.mediator.ClearLocalCache()
	}
}
