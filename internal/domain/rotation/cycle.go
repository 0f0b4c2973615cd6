package rotation

import "time"

// Cycle is a bounded time window during which one question per region is
// "current". At most one cycle is active at any instant, system-wide.
// Cycles are deactivated by rotation, never deleted.
type Cycle struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	Active    bool
	CreatedAt time.Time
}
