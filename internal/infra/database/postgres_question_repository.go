package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"question_rotation_service/internal/domain/question"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var ErrQuestionNotFound = fmt.Errorf("question not found")
var ErrDuplicateEligibility = fmt.Errorf("question is already eligible for this region")

type PostgresQuestionRepository struct {
	db *sql.DB
}

func NewPostgresQuestionRepository(db *sql.DB) *PostgresQuestionRepository {
	return &PostgresQuestionRepository{db: db}
}

func (r *PostgresQuestionRepository) Create(ctx context.Context, q *question.Question) error {
	query := `INSERT INTO questions (content)
               VALUES ($1)
               RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, q.Content).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating question: %w", err)
	}
	return nil
}

func (r *PostgresQuestionRepository) GetByID(ctx context.Context, id int64) (*question.Question, error) {
	query := `SELECT id, content, created_at FROM questions WHERE id = $1`
	q := &question.Question{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&q.ID, &q.Content, &q.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("error getting question by ID: %w", err)
	}
	return q, nil
}

func (r *PostgresQuestionRepository) AddEligibility(ctx context.Context, regionID, questionID int64) error {
	query := `INSERT INTO region_question_eligibility (region_id, question_id)
               VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, regionID, questionID)
	if err != nil {
		if strings.Contains(err.Error(), "region_question_eligibility_unique") {
			return ErrDuplicateEligibility
		}
		return fmt.Errorf("error adding eligibility (R:%d, Q:%d): %w", regionID, questionID, err)
	}
	return nil
}

// ListEligibleByRegion returns the candidate pool ordered by question id
// ascending; the selector relies on this stable ordering.
func (r *PostgresQuestionRepository) ListEligibleByRegion(ctx context.Context, regionID int64) ([]*question.Question, error) {
	query := `SELECT q.id, q.content, q.created_at
               FROM questions q
               JOIN region_question_eligibility e ON e.question_id = q.id
               WHERE e.region_id = $1
               ORDER BY q.id ASC`

	rows, err := r.db.QueryContext(ctx, query, regionID)
	if err != nil {
		return nil, fmt.Errorf("error listing eligible questions for region %d: %w", regionID, err)
	}
	defer rows.Close()

	questions := make([]*question.Question, 0)
	for rows.Next() {
		q := &question.Question{}
		if err := rows.Scan(&q.ID, &q.Content, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning eligible question: %w", err)
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating eligible questions: %w", err)
	}
	return questions, nil
}
