package region

import "context"

// Repository defines the operations for persisting and retrieving Region entities.
type Repository interface {
	Create(ctx context.Context, region *Region) error
	GetByID(ctx context.Context, id int64) (*Region, error)
	// ListAll returns every region. The rotation walks this list in full:
	// a region missing from a committed cycle is a data defect.
	ListAll(ctx context.Context) ([]*Region, error)
}
