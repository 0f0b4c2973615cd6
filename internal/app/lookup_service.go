// internal/app/lookup_service.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"question_rotation_service/internal/domain/region"
	"question_rotation_service/internal/domain/rotation"
	idb "question_rotation_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// Client-visible errors. ErrUnknownRegion is a caller mistake;
// ErrNoActiveAssignment means the region exists but the active cycle has
// no row for it, which is a rotation defect on the server side.
var ErrUnknownRegion = fmt.Errorf("unknown region")
var ErrNoActiveAssignment = fmt.Errorf("no active assignment for region")

// LookupService serves the current question for a region, cache-aside
// against the assignment store.
type LookupService interface {
	GetCurrentQuestion(ctx context.Context, regionID int64) (*rotation.CurrentQuestion, error)
}

// LookupServiceImpl implements the LookupService interface.
type LookupServiceImpl struct {
	rotationRepo rotation.Repository
	regionRepo   region.Repository
	lookupCache  rotation.Cache
	logger       *logrus.Logger

	// Coalesces concurrent cache misses for the same region so a cold
	// region triggers one store query instead of a stampede.
	lookupChans sync.Map
}

func NewLookupServiceImpl(
	rotr rotation.Repository,
	rr region.Repository,
	lc rotation.Cache,
	logger *logrus.Logger,
) *LookupServiceImpl {
	return &LookupServiceImpl{
		rotationRepo: rotr,
		regionRepo:   rr,
		lookupCache:  lc,
		logger:       logger,
	}
}

// GetCurrentQuestion returns the question assigned to the region in the
// active cycle. Cache hit returns immediately with no store access. On a
// miss the store is queried and the cache populated with TTL equal to
// the remaining time until the cycle's end, so an entry self-expires
// exactly when rotation should have replaced it. Cache failures are
// never fatal; they degrade to direct store reads.
func (s *LookupServiceImpl) GetCurrentQuestion(ctx context.Context, regionID int64) (*rotation.CurrentQuestion, error) {
	cur, err := s.lookupCache.GetCurrent(ctx, regionID)
	if err == nil {
		return cur, nil
	}
	if err != rotation.ErrCacheMiss {
		s.logger.WithError(err).WithField("region_id", regionID).Warn("Lookup cache read failed; falling back to store.")
	}

	// Coalesce concurrent misses for the same region.
	res := make(chan struct{})
	val, loaded := s.lookupChans.LoadOrStore(regionID, res)
	if loaded {
		// Another request is already filling this region. Wait for it,
		// then read the cache it populated.
		select {
		case <-val.(chan struct{}):
			cur, err := s.lookupCache.GetCurrent(ctx, regionID)
			if err == nil {
				return cur, nil
			}
			// Leader failed or the cache write did not stick; query the
			// store directly. Writes are idempotent, so this converges.
			return s.fetchAndFill(ctx, regionID)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	defer func() {
		s.lookupChans.Delete(regionID)
		close(res)
	}()

	return s.fetchAndFill(ctx, regionID)
}

func (s *LookupServiceImpl) fetchAndFill(ctx context.Context, regionID int64) (*rotation.CurrentQuestion, error) {
	cur, err := s.rotationRepo.GetCurrentAssignment(ctx, regionID)
	if err == idb.ErrAssignmentNotFound {
		// Distinguish a caller error from a rotation defect.
		if _, regErr := s.regionRepo.GetByID(ctx, regionID); regErr != nil {
			if regErr == idb.ErrRegionNotFound {
				return nil, ErrUnknownRegion
			}
			return nil, fmt.Errorf("failed to check region %d: %w", regionID, regErr)
		}
		return nil, fmt.Errorf("region %d: %w", regionID, ErrNoActiveAssignment)
	}
	if err != nil {
		// Transient store failure surfaces as a retryable error, never a
		// fabricated "no question" result.
		return nil, fmt.Errorf("failed to query current assignment for region %d: %w", regionID, err)
	}

	ttl := time.Until(cur.CycleEndsAt)
	if ttl > 0 {
		if cacheErr := s.lookupCache.SetCurrent(ctx, cur, ttl); cacheErr != nil {
			s.logger.WithError(cacheErr).WithField("region_id", regionID).Warn("Lookup cache write failed.")
		}
	}
	return cur, nil
}
