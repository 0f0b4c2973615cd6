package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"question_rotation_service/internal/domain/region"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrRegionNotFound = fmt.Errorf("region not found")
var ErrDuplicateRegionName = fmt.Errorf("region with this name already exists")

type PostgresRegionRepository struct {
	db *sql.DB
}

func NewPostgresRegionRepository(db *sql.DB) *PostgresRegionRepository {
	return &PostgresRegionRepository{db: db}
}

func (r *PostgresRegionRepository) Create(ctx context.Context, reg *region.Region) error {
	query := `INSERT INTO regions (name)
               VALUES ($1)
               RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, reg.Name).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") && strings.Contains(err.Error(), "regions_name_key") {
			return ErrDuplicateRegionName
		}
		return fmt.Errorf("error creating region: %w", err)
	}
	return nil
}

func (r *PostgresRegionRepository) GetByID(ctx context.Context, id int64) (*region.Region, error) {
	query := `SELECT id, name, created_at FROM regions WHERE id = $1`
	reg := &region.Region{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&reg.ID, &reg.Name, &reg.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRegionNotFound
		}
		return nil, fmt.Errorf("error getting region by ID: %w", err)
	}
	return reg, nil
}

func (r *PostgresRegionRepository) ListAll(ctx context.Context) ([]*region.Region, error) {
	query := `SELECT id, name, created_at FROM regions ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing regions: %w", err)
	}
	defer rows.Close()

	regions := make([]*region.Region, 0)
	for rows.Next() {
		reg := &region.Region{}
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning region: %w", err)
		}
		regions = append(regions, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}
	return regions, nil
}
