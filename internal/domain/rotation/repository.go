package rotation

import "context"

// Repository defines the persistence operations for cycles and assignments.
// The rotation service is the sole writer; everything else is read-only.
type Repository interface {
	// GetActiveCycle returns the single active cycle, or
	// database.ErrNoActiveCycle before the first rotation.
	GetActiveCycle(ctx context.Context) (*Cycle, error)

	// CommitRotation atomically deactivates the cycle identified by
	// previousCycleID, inserts newCycle as active, and inserts every
	// assignment, all in one transaction. previousCycleID 0 means
	// bootstrap: no cycle may be active yet. If the expected previous
	// cycle is no longer active (a concurrent rotation already
	// committed), the transaction is rolled back and
	// database.ErrRotationConflict is returned. On success newCycle.ID
	// and the assignment IDs are populated.
	CommitRotation(ctx context.Context, previousCycleID int64, newCycle *Cycle, assignments []*Assignment) error

	// ListAssignedQuestionIDs returns every question ever assigned to
	// the region, in cycle chronological order. The last element is the
	// most recently assigned question.
	ListAssignedQuestionIDs(ctx context.Context, regionID int64) ([]int64, error)

	// GetCurrentAssignment returns the region's assignment in the active
	// cycle joined with the question content, or
	// database.ErrAssignmentNotFound when no such row exists.
	GetCurrentAssignment(ctx context.Context, regionID int64) (*CurrentQuestion, error)
}
