// Package repository defines the capture store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
)

// Store provides read/write access to the buffered capture log.
//
// The log is append-only: records are never physically deleted, and the
// only mutation after append is the one-way synced flag flip performed by
// MarkSynced. Implementations must preserve insertion order.
type Store interface {
	// Append adds a record to the end of the log and persists it.
	// A non-nil error wrapping ErrPersist means the record is held in
	// memory but could not be written durably; the append itself
	// succeeded and callers should log rather than fail.
	Append(ctx context.Context, rec model.CaptureRecord) error

	// Pending returns the unsynced records in insertion order. When
	// since is non-nil only records with a timestamp strictly after it
	// are returned.
	Pending(ctx context.Context, since *time.Time) []model.CaptureRecord

	// All returns the full capture history regardless of sync state.
	All(ctx context.Context) []model.CaptureRecord

	// MarkSynced flips synced to true for every known id in ids and
	// records now as the last sync time. Unknown ids are ignored.
	// Returns the number of records newly marked.
	MarkSynced(ctx context.Context, ids []string, now time.Time) (int, error)

	// LastSync returns the time of the most recent acknowledgment, or
	// nil if none has happened yet.
	LastSync(ctx context.Context) *time.Time

	// Reload discards in-memory state and rebuilds it from the
	// persisted store.
	Reload(ctx context.Context) error

	// Count returns the total number of records in the log.
	Count(ctx context.Context) int

	// PendingCount returns the number of unsynced records.
	PendingCount(ctx context.Context) int

	// Close releases the underlying store.
	Close() error
}
