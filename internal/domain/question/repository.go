package question

import "context"

// Repository defines the operations for questions and their per-region eligibility.
type Repository interface {
	Create(ctx context.Context, question *Question) error
	GetByID(ctx context.Context, id int64) (*Question, error)
	// AddEligibility declares a question selectable for a region.
	AddEligibility(ctx context.Context, regionID, questionID int64) error
	// ListEligibleByRegion returns the candidate pool for a region,
	// ordered by question id ascending. The selector depends on this
	// ordering being stable.
	ListEligibleByRegion(ctx context.Context, regionID int64) ([]*Question, error)
}
