package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a history entry.
type Status string

// History statuses. An entry starts as StatusGenerating and is finished
// exactly once with StatusCompleted or StatusFailed.
const (
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// HistoryEntry is one recorded generation.
type HistoryEntry struct {
	ID          string
	User        string
	FrameworkID string
	Provider    string
	Model       string
	Input       string
	Output      string
	Status      Status
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StartHistory records a new entry with StatusGenerating and returns its id.
// ID, Status and timestamps on e are ignored.
func (s *Store) StartHistory(ctx context.Context, e HistoryEntry) (string, error) {
	if err := validUser(e.User); err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := s.timestamp()
	_, err := s.db.ExecContext(ctx, `INSERT INTO history(id, user_name, framework_id, provider, model, input, status, created_at, updated_at)
VALUES(?,?,?,?,?,?,?,?,?)`,
		id, e.User, e.FrameworkID, e.Provider, e.Model, e.Input, string(StatusGenerating), now, now)
	if err != nil {
		return "", fmt.Errorf("start history: %w", err)
	}
	return id, nil
}

// FinishHistory moves a generating entry to its terminal status.
// Returns ErrNotFound when id is unknown or already finished.
func (s *Store) FinishHistory(ctx context.Context, id, output string, status Status, errMsg string) error {
	if status != StatusCompleted && status != StatusFailed {
		return fmt.Errorf("finish history: invalid status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE history SET output=?, status=?, error=?, updated_at=? WHERE id=? AND status=?`,
		output, string(status), errMsg, s.timestamp(), id, string(StatusGenerating))
	if err != nil {
		return fmt.Errorf("finish history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish history: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("history %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecentHistory returns up to limit entries of user, newest first.
func (s *Store) RecentHistory(ctx context.Context, user string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_name, framework_id, provider, model, input, output, status, error, created_at, updated_at
FROM history WHERE user_name=? ORDER BY created_at DESC, rowid DESC LIMIT ?`, user, limit)
	if err != nil {
		return nil, fmt.Errorf("recent history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var status string
		var created, updated int64
		if err := rows.Scan(&e.ID, &e.User, &e.FrameworkID, &e.Provider, &e.Model,
			&e.Input, &e.Output, &status, &e.Error, &created, &updated); err != nil {
			return nil, fmt.Errorf("recent history: %w", err)
		}
		e.Status = Status(status)
		e.CreatedAt = fromMillis(created)
		e.UpdatedAt = fromMillis(updated)
		out = append(out, e)
	}
	return out, rows.Err()
}
