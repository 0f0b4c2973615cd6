// internal/infra/database/postgres_rotation_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"question_rotation_service/internal/domain/rotation"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors specific to the rotation repository
var ErrNoActiveCycle = fmt.Errorf("no active cycle")
var ErrAssignmentNotFound = fmt.Errorf("assignment not found for active cycle")
var ErrRotationConflict = fmt.Errorf("another rotation already committed for this period")

type PostgresRotationRepository struct {
	db *sql.DB
}

func NewPostgresRotationRepository(db *sql.DB) *PostgresRotationRepository {
	return &PostgresRotationRepository{db: db}
}

func (r *PostgresRotationRepository) GetActiveCycle(ctx context.Context) (*rotation.Cycle, error) {
	query := `SELECT id, start_time, end_time, active, created_at FROM cycles WHERE active = TRUE`
	cycle := rotation.Cycle{}
	err := r.db.QueryRowContext(ctx, query).Scan(&cycle.ID, &cycle.StartTime, &cycle.EndTime, &cycle.Active, &cycle.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoActiveCycle
		}
		return nil, fmt.Errorf("error getting active cycle: %w", err)
	}
	return &cycle, nil
}

// CommitRotation performs the cycle swap as a single all-or-nothing
// transaction: conditionally deactivate the expected previous cycle,
// insert the new active cycle, bulk-insert every assignment. The
// conditional UPDATE acts as a compare-and-swap on the active cycle id,
// so a concurrent rotation that already committed surfaces as
// ErrRotationConflict instead of a silent overwrite. Readers never
// observe a cycle active without its complete assignment set.
func (r *PostgresRotationRepository) CommitRotation(ctx context.Context, previousCycleID int64, newCycle *rotation.Cycle, assignments []*rotation.Assignment) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rotation transaction: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	if previousCycleID != 0 {
		res, err := txn.ExecContext(ctx, `UPDATE cycles SET active = FALSE WHERE id = $1 AND active = TRUE`, previousCycleID)
		if err != nil {
			return fmt.Errorf("error deactivating cycle %d: %w", previousCycleID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("error reading deactivation result: %w", err)
		}
		if affected == 0 {
			// The expected cycle is no longer active: someone rotated first.
			return ErrRotationConflict
		}
	} else {
		// Bootstrap path: the commit is only valid if no cycle exists yet.
		var activeCount int
		if err := txn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cycles WHERE active = TRUE`).Scan(&activeCount); err != nil {
			return fmt.Errorf("error checking for active cycle on bootstrap: %w", err)
		}
		if activeCount != 0 {
			return ErrRotationConflict
		}
	}

	err = txn.QueryRowContext(ctx,
		`INSERT INTO cycles (start_time, end_time, active) VALUES ($1, $2, TRUE) RETURNING id, created_at`,
		newCycle.StartTime, newCycle.EndTime,
	).Scan(&newCycle.ID, &newCycle.CreatedAt)
	if err != nil {
		// The partial unique index cycles_single_active backs up the CAS
		// above against racing bootstraps.
		if strings.Contains(err.Error(), "cycles_single_active") {
			return ErrRotationConflict
		}
		return fmt.Errorf("error inserting new cycle: %w", err)
	}
	newCycle.Active = true

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO assignments (cycle_id, region_id, question_id)
                                         VALUES ($1, $2, $3)
                                         RETURNING id, created_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for assignment insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		a.CycleID = newCycle.ID
		if err := stmt.QueryRowContext(ctx, a.CycleID, a.RegionID, a.QuestionID).Scan(&a.ID, &a.CreatedAt); err != nil {
			return fmt.Errorf("error inserting assignment (C:%d, R:%d, Q:%d): %w", a.CycleID, a.RegionID, a.QuestionID, err)
		}
	}

	return txn.Commit()
}

// ListAssignedQuestionIDs returns the region's full assignment history in
// cycle chronological order. Selection state is derived purely from this
// history, so there is no separate "last used" counter to drift.
func (r *PostgresRotationRepository) ListAssignedQuestionIDs(ctx context.Context, regionID int64) ([]int64, error) {
	query := `SELECT a.question_id
               FROM assignments a
               JOIN cycles c ON c.id = a.cycle_id
               WHERE a.region_id = $1
               ORDER BY c.start_time ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, regionID)
	if err != nil {
		return nil, fmt.Errorf("error querying assignment history for region %d: %w", regionID, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning assignment history row: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment history: %w", err)
	}
	return ids, nil
}

func (r *PostgresRotationRepository) GetCurrentAssignment(ctx context.Context, regionID int64) (*rotation.CurrentQuestion, error) {
	query := `SELECT a.region_id, a.question_id, q.content, c.id, c.end_time
               FROM assignments a
               JOIN cycles c ON c.id = a.cycle_id AND c.active = TRUE
               JOIN questions q ON q.id = a.question_id
               WHERE a.region_id = $1`

	cur := rotation.CurrentQuestion{}
	err := r.db.QueryRowContext(ctx, query, regionID).Scan(&cur.RegionID, &cur.QuestionID, &cur.Content, &cur.CycleID, &cur.CycleEndsAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error getting current assignment for region %d: %w", regionID, err)
	}
	return &cur, nil
}
