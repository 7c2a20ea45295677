package imagecache

import (
	"sync"
	"time"

	"github.com/pokeatlas/syncbridge/internal/domain/types"
	"github.com/pokeatlas/syncbridge/pkg/metrics"
)

// DefaultTTL is how long a cached image reference stays trusted.
const DefaultTTL = 24 * time.Hour

// entry is one cached image reference. blob is nil for entries that do
// not own a revocable resource.
type entry struct {
	url      string
	cachedAt time.Time
	blob     *Blob
}

// cache is a mutex-guarded TTL map with lazy eviction: expiry is checked
// on lookup, not by a background sweep. An expired entry's blob is
// released before the lookup is treated as a miss.
type cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func newCache(ttl time.Duration, now func() time.Time) *cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     now,
	}
}

// get returns the cached URL for key if present and not expired.
func (c *cache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}

	if c.now().Sub(e.cachedAt) > c.ttl {
		if e.blob != nil {
			e.blob.Release()
		}
		delete(c.entries, key)
		metrics.RecordImageCacheEviction()
		metrics.UpdateImageCacheSize(len(c.entries))
		return "", false
	}

	return e.url, true
}

// put stores url under key, releasing any resource held by a previous
// entry for the same key.
func (c *cache) put(key, url string, blob *Blob) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok && old.blob != nil {
		old.blob.Release()
	}
	c.entries[key] = entry{url: url, cachedAt: c.now(), blob: blob}
	metrics.UpdateImageCacheSize(len(c.entries))
}

// clear releases every held resource and empties the map. Idempotent;
// Blob.Release guarantees no double-release.
func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.blob != nil {
			e.blob.Release()
		}
	}
	c.entries = make(map[string]entry)
	metrics.UpdateImageCacheSize(0)
}

// stats derives size and age bounds from memory only.
func (c *cache) stats() types.LocalCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := types.LocalCacheStats{Size: len(c.entries)}
	for _, e := range c.entries {
		cachedAt := e.cachedAt
		if s.Oldest == nil || cachedAt.Before(*s.Oldest) {
			ts := cachedAt
			s.Oldest = &ts
		}
		if s.Newest == nil || cachedAt.After(*s.Newest) {
			ts := cachedAt
			s.Newest = &ts
		}
	}
	return s
}
