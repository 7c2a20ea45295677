package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
	"github.com/pokeatlas/syncbridge/pkg/metrics"
	bolt "go.etcd.io/bbolt"
)

// Bucket names.
var (
	bucketCaptures = []byte("captures") // insertion seq -> record JSON
	bucketIndex    = []byte("index")    // capture_id -> insertion seq
	bucketMeta     = []byte("meta")     // "last_sync" -> RFC3339
)

var keyLastSync = []byte("last_sync")

const defaultOpenTimeout = 1 * time.Second

// BoltStore implements Store on top of a bbolt file, with the full log
// mirrored in memory for ordered reads. Each record is written under its
// own sequence key, so a mutation touches one record instead of
// rewriting the whole log.
//
// With an empty path the store runs memory-only: every operation works
// but nothing survives a restart.
type BoltStore struct {
	mu sync.RWMutex

	db          *bolt.DB
	path        string
	openTimeout time.Duration

	records  []model.CaptureRecord
	byID     map[string]int // capture_id -> index into records
	lastSync *time.Time
	closed   bool
}

// NewBoltStore opens (or creates) the capture store. A load failure of
// persisted records is returned wrapped in ErrLoad but leaves the store
// usable with whatever could be read; an open failure wraps ErrOpen and
// callers may fall back to a memory-only store.
func NewBoltStore(ctx context.Context, opts ...Option) (*BoltStore, error) {
	s := &BoltStore{
		openTimeout: defaultOpenTimeout,
		byID:        make(map[string]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.path == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: s.openTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCaptures, bucketIndex, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	s.db = db

	if err := s.load(ctx); err != nil {
		// Recoverable: the store stays usable with the records that
		// could be read. Availability wins over strict durability.
		return s, err
	}
	return s, nil
}

// load rebuilds the in-memory log from the bolt file. Must not be called
// with s.mu held.
func (s *BoltStore) load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Memory-only stores hold the only copy of the buffer; there is no
	// file to rebuild from, so the in-memory log must survive.
	if s.db == nil {
		return nil
	}

	s.records = nil
	s.byID = make(map[string]int)
	s.lastSync = nil

	var corrupt int
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketCaptures); b != nil {
			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				var rec model.CaptureRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					corrupt++
					continue
				}
				s.byID[rec.CaptureID] = len(s.records)
				s.records = append(s.records, rec)
			}
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(keyLastSync); v != nil {
				if ts, err := time.Parse(time.RFC3339Nano, string(v)); err == nil {
					s.lastSync = &ts
				} else {
					corrupt++
				}
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordPersistenceError()
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if corrupt > 0 {
		metrics.RecordPersistenceError()
		return fmt.Errorf("%w: %d corrupt entries skipped", ErrLoad, corrupt)
	}
	return nil
}

// Append implements Store.
func (s *BoltStore) Append(ctx context.Context, rec model.CaptureRecord) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.byID[rec.CaptureID] = len(s.records)
	s.records = append(s.records, rec)
	metrics.UpdateTotalCaptures(len(s.records))

	if s.db == nil {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		captures := tx.Bucket(bucketCaptures)
		seq, err := captures.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		key := itob(seq)
		if err := captures.Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(bucketIndex).Put([]byte(rec.CaptureID), key)
	})
	if err != nil {
		metrics.RecordPersistenceError()
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Pending implements Store.
func (s *BoltStore) Pending(ctx context.Context, since *time.Time) []model.CaptureRecord {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CaptureRecord, 0)
	for _, rec := range s.records {
		if rec.Synced {
			continue
		}
		if since != nil && !rec.Timestamp.After(*since) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// All implements Store.
func (s *BoltStore) All(ctx context.Context) []model.CaptureRecord {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CaptureRecord, len(s.records))
	copy(out, s.records)
	return out
}

// MarkSynced implements Store.
func (s *BoltStore) MarkSynced(ctx context.Context, ids []string, now time.Time) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	var marked []int
	for _, id := range ids {
		idx, ok := s.byID[id]
		if !ok || s.records[idx].Synced {
			// Unknown ids are silently ignored; already-synced records
			// keep acknowledgment idempotent.
			continue
		}
		s.records[idx].Synced = true
		marked = append(marked, idx)
	}

	s.lastSync = &now

	if s.db == nil {
		return len(marked), nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		captures := tx.Bucket(bucketCaptures)
		index := tx.Bucket(bucketIndex)
		for _, idx := range marked {
			rec := s.records[idx]
			key := index.Get([]byte(rec.CaptureID))
			if key == nil {
				continue
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := captures.Put(key, data); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketMeta).Put(keyLastSync, []byte(now.Format(time.RFC3339Nano)))
	})
	if err != nil {
		metrics.RecordPersistenceError()
		return len(marked), fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return len(marked), nil
}

// LastSync implements Store.
func (s *BoltStore) LastSync(ctx context.Context) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastSync == nil {
		return nil
	}
	ts := *s.lastSync
	return &ts
}

// Reload implements Store.
func (s *BoltStore) Reload(ctx context.Context) error {
	metrics.RecordStoreReload()
	return s.load(ctx)
}

// Count implements Store.
func (s *BoltStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// PendingCount implements Store.
func (s *BoltStore) PendingCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.records {
		if !rec.Synced {
			n++
		}
	}
	return n
}

// Close implements Store.
func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// itob returns an 8-byte big-endian representation of v, so bolt cursors
// iterate captures in insertion order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
