package monitor

import (
	"context"
	"time"
)

// Fetcher retrieves the raw body of a source. Implementations must honor the
// context deadline and classify failures as *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, source Source) ([]byte, error)
}

// Hasher reduces a fetched body to its digest.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Notifier delivers one batched alert for a sweep's changes. Implementations
// are called at most once per sweep and only with a non-empty batch.
type Notifier interface {
	Notify(ctx context.Context, changes []Change) error
}

// SnapshotStore persists and restores the monitor state wholesale. Both
// directions are best-effort: the monitor keeps running when either fails.
type SnapshotStore interface {
	// Load returns the stored snapshot and true, or a zero snapshot and
	// false when nothing usable is stored. A missing snapshot is not an
	// error.
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
}
