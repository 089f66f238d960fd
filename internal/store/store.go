// Package store persists optimization run history in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Run is one recorded optimization.
type Run struct {
	ID            uuid.UUID `json:"id"`
	FileName      string    `json:"file_name"`
	ThreadID      string    `json:"thread_id"`
	ExtractedText string    `json:"extracted_text"`
	OptimizedText string    `json:"optimized_text"`
	MatchScore    *int      `json:"match_score,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and ensures the schema exists.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS optimization_runs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			file_name TEXT NOT NULL,
			thread_id TEXT NOT NULL DEFAULT '',
			extracted_text TEXT NOT NULL,
			optimized_text TEXT NOT NULL,
			match_score INT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateRun records a completed optimization and returns its ID.
func (s *Store) CreateRun(ctx context.Context, run *Run) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO optimization_runs (file_name, thread_id, extracted_text, optimized_text, match_score)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		run.FileName, run.ThreadID, run.ExtractedText, run.OptimizedText, run.MatchScore,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// GetRun fetches one run by ID, returning nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, file_name, thread_id, extracted_text, optimized_text, match_score, created_at
		 FROM optimization_runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.FileName, &run.ThreadID, &run.ExtractedText, &run.OptimizedText, &run.MatchScore, &run.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns recent runs, newest first, without the stored texts.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, file_name, thread_id, match_score, created_at
		 FROM optimization_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.FileName, &run.ThreadID, &run.MatchScore, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
