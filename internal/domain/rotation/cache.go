package rotation

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache.GetCurrent when no entry exists for
// the region (or the entry expired).
var ErrCacheMiss = errors.New("lookup cache miss")

// Cache is the fast region -> current-question lookup layer. Entries are
// derived, disposable state: every write fully replaces a key with a
// freshly computed value, and TTLs are derived from the active cycle's
// remaining lifetime so entries self-expire at the cycle boundary.
type Cache interface {
	GetCurrent(ctx context.Context, regionID int64) (*CurrentQuestion, error)
	SetCurrent(ctx context.Context, current *CurrentQuestion, ttl time.Duration) error
	// SetCurrentBulk writes the full post-rotation snapshot. Best-effort:
	// it keeps going past individual key failures and returns the first
	// error encountered.
	SetCurrentBulk(ctx context.Context, entries []*CurrentQuestion, ttl time.Duration) error
}
