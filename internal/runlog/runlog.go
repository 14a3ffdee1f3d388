// Package runlog records per-day sync run outcomes in Postgres so backfills
// can skip days that already completed.
package runlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Counts captures how many records a run exported per kind.
type Counts struct {
	Org       int
	Users     int
	Teams     int
	AiCommits int
	AiChanges int
}

func (c Counts) Total() int {
	return c.Org + c.Users + c.Teams + c.AiCommits + c.AiChanges
}

// Store persists run bookkeeping. A nil store is a no-op so callers do not
// need to branch on whether a database is configured.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Begin inserts a running entry for the given org and day (YYYY-MM-DD) and
// returns its id.
func (s *Store) Begin(ctx context.Context, org, day string) (uuid.UUID, error) {
	id := uuid.New()
	if s == nil || s.pool == nil {
		return id, nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, org, day, status) VALUES ($1, $2, $3, $4)`,
		id, org, day, StatusRunning)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert sync run: %w", err)
	}
	return id, nil
}

// Complete marks a run as completed and records its export counts.
func (s *Store) Complete(ctx context.Context, id uuid.UUID, counts Counts) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE sync_runs
		 SET status = $2,
		     org_records = $3,
		     user_records = $4,
		     team_records = $5,
		     ai_commit_records = $6,
		     ai_change_records = $7,
		     finished_at = now()
		 WHERE id = $1`,
		id, StatusCompleted,
		counts.Org, counts.Users, counts.Teams, counts.AiCommits, counts.AiChanges)
	if err != nil {
		return fmt.Errorf("complete sync run: %w", err)
	}
	return nil
}

// Fail marks a run as failed with the error message.
func (s *Store) Fail(ctx context.Context, id uuid.UUID, runErr error) error {
	if s == nil || s.pool == nil {
		return nil
	}
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE sync_runs SET status = $2, error = $3, finished_at = now() WHERE id = $1`,
		id, StatusFailed, msg)
	if err != nil {
		return fmt.Errorf("fail sync run: %w", err)
	}
	return nil
}

// Completed reports whether a completed run already exists for the org and
// day. Without a database every day reads as not yet completed.
func (s *Store) Completed(ctx context.Context, org, day string) (bool, error) {
	if s == nil || s.pool == nil {
		return false, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM sync_runs WHERE org = $1 AND day = $2 AND status = $3
		 )`,
		org, day, StatusCompleted).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query sync runs: %w", err)
	}
	return exists, nil
}
