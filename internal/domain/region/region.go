package region

import "time"

// Region represents a geographic region served by the rotation.
// Immutable after creation.
type Region struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
