package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ EventStore = (*store)(nil)

const defaultLimit = 50

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates an EventStore over the workflow_events table.
func NewStore(db *sql.DB) EventStore {
	return &store{db: db}
}

func (s *store) Append(ctx context.Context, e WorkflowEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	teamIDs, err := json.Marshal(orEmpty(e.TeamIDs))
	if err != nil {
		return fmt.Errorf("failed to encode team ids: %w", err)
	}
	warnings, err := json.Marshal(orEmpty(e.Warnings))
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_events (id, type, date, time, team_ids, message, warnings, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		e.ID, e.Type, e.Date, e.Time, string(teamIDs), e.Message, string(warnings), e.Error, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert workflow event: %w", err)
	}
	return nil
}

func (s *store) List(ctx context.Context, date string, limit int) ([]WorkflowEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = defaultLimit
	}
	query := `SELECT id, type, date, time, team_ids, message, warnings, error, created_at FROM workflow_events`
	args := []any{}
	if date != "" {
		query += ` WHERE date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow events: %w", err)
	}
	defer rows.Close()

	events := []WorkflowEvent{}
	for rows.Next() {
		var (
			e                 WorkflowEvent
			teamIDs, warnings string
			created           int64
		)
		if err := rows.Scan(&e.ID, &e.Type, &e.Date, &e.Time, &teamIDs, &e.Message, &warnings, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("failed to scan workflow event: %w", err)
		}
		if err := json.Unmarshal([]byte(teamIDs), &e.TeamIDs); err != nil {
			return nil, fmt.Errorf("failed to decode team ids of %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(warnings), &e.Warnings); err != nil {
			return nil, fmt.Errorf("failed to decode warnings of %s: %w", e.ID, err)
		}
		e.CreatedAt = time.UnixMilli(created)
		events = append(events, e)
	}
	return events, rows.Err()
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
