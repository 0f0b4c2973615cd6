// internal/app/rotation_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"question_rotation_service/internal/domain/question"
	"question_rotation_service/internal/domain/region"
	"question_rotation_service/internal/domain/rotation"
	"question_rotation_service/internal/infra/config"
	idb "question_rotation_service/internal/infra/database" // Alias for DB errors

	"github.com/sirupsen/logrus"
)

// RotationResult summarizes one rotation attempt for the scheduler.
type RotationResult struct {
	Conflict    bool // another rotation already committed for this period
	CycleID     int64
	StartTime   time.Time
	EndTime     time.Time
	Assignments int
	CachePushed bool
}

// RotationService defines the operation of swapping the active cycle.
type RotationService interface {
	// Rotate closes the active cycle, opens a new one, and assigns a
	// question to every region in a single conditional transaction. A
	// concurrent rotation that committed first resolves as a
	// success-no-op with Conflict set, not an error.
	Rotate(ctx context.Context) (*RotationResult, error)
}

// RotationServiceImpl implements the RotationService interface.
type RotationServiceImpl struct {
	regionRepo   region.Repository
	questionRepo question.Repository
	rotationRepo rotation.Repository
	lookupCache  rotation.Cache
	durations    config.DurationProvider
	logger       *logrus.Logger
}

func NewRotationServiceImpl(
	rr region.Repository,
	qr question.Repository,
	rotr rotation.Repository,
	lc rotation.Cache,
	dp config.DurationProvider,
	logger *logrus.Logger,
) *RotationServiceImpl {
	return &RotationServiceImpl{
		regionRepo:   rr,
		questionRepo: qr,
		rotationRepo: rotr,
		lookupCache:  lc,
		durations:    dp,
		logger:       logger,
	}
}

func (s *RotationServiceImpl) Rotate(ctx context.Context) (*RotationResult, error) {
	// 1. Cycle length comes from the external configuration source, read
	// once per invocation. An undefined cycle length fails the whole
	// rotation; it is never guessed.
	cycleDuration, err := s.durations.GetDuration(config.KeyCycleDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to read cycle duration: %w", err)
	}

	// 2. New cycle bounds chain off the previous cycle's end. Only the
	// very first rotation starts from "now".
	var previousCycleID int64
	var startTime time.Time
	activeCycle, err := s.rotationRepo.GetActiveCycle(ctx)
	switch {
	case err == nil:
		previousCycleID = activeCycle.ID
		startTime = activeCycle.EndTime
	case err == idb.ErrNoActiveCycle:
		s.logger.Info("No active cycle found. Bootstrapping the first cycle.")
		startTime = time.Now()
	default:
		return nil, fmt.Errorf("failed to get active cycle: %w", err)
	}
	endTime := startTime.Add(cycleDuration)

	// 3. Full region enumeration. Selection failure for any one region
	// aborts the entire rotation: a cycle missing assignments must never
	// become observable.
	regions, err := s.regionRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}

	assignments := make([]*rotation.Assignment, 0, len(regions))
	snapshot := make([]*rotation.CurrentQuestion, 0, len(regions))
	for _, reg := range regions {
		eligible, err := s.questionRepo.ListEligibleByRegion(ctx, reg.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list eligible questions for region %d: %w", reg.ID, err)
		}
		history, err := s.rotationRepo.ListAssignedQuestionIDs(ctx, reg.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignment history for region %d: %w", reg.ID, err)
		}
		next, err := SelectNextQuestion(eligible, history)
		if err != nil {
			return nil, fmt.Errorf("selection failed for region %d (%s): %w", reg.ID, reg.Name, err)
		}
		assignments = append(assignments, &rotation.Assignment{
			RegionID:   reg.ID,
			QuestionID: next.ID,
		})
		snapshot = append(snapshot, &rotation.CurrentQuestion{
			RegionID:    reg.ID,
			QuestionID:  next.ID,
			Content:     next.Content,
			CycleEndsAt: endTime,
		})
	}

	// 4. Single conditional transaction: CAS on the previously active
	// cycle id, insert the new cycle, insert all assignments.
	newCycle := &rotation.Cycle{StartTime: startTime, EndTime: endTime}
	err = s.rotationRepo.CommitRotation(ctx, previousCycleID, newCycle, assignments)
	if err == idb.ErrRotationConflict {
		// Duplicate scheduler trigger: someone else committed this
		// period. Nothing to do, old data stays intact.
		s.logger.WithField("previous_cycle_id", previousCycleID).Info("Rotation skipped: another rotation already committed for this period.")
		return &RotationResult{Conflict: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to commit rotation: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"cycle_id":    newCycle.ID,
		"start_time":  newCycle.StartTime,
		"end_time":    newCycle.EndTime,
		"assignments": len(assignments),
	}).Info("Rotation committed.")

	result := &RotationResult{
		CycleID:     newCycle.ID,
		StartTime:   newCycle.StartTime,
		EndTime:     newCycle.EndTime,
		Assignments: len(assignments),
	}

	// 5. Best-effort cache push of the full snapshot. Failure here is
	// never fatal: the lookup path's cache-aside fill self-heals a cold
	// or stale cache. TTL is the cycle's remaining lifetime, so entries
	// expire at the cycle boundary even if rotation ran late.
	for i := range snapshot {
		snapshot[i].CycleID = newCycle.ID
	}
	ttl := time.Until(newCycle.EndTime)
	if ttl <= 0 {
		s.logger.WithField("cycle_id", newCycle.ID).Warn("New cycle already past its end time; skipping cache push.")
		return result, nil
	}
	if err := s.lookupCache.SetCurrentBulk(ctx, snapshot, ttl); err != nil {
		s.logger.WithError(err).Warn("Cache push after rotation failed; lookups will fall back to the store.")
		return result, nil
	}
	result.CachePushed = true
	return result, nil
}
