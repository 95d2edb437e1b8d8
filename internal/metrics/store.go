package metrics

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var _ MetricsStore = (*store)(nil)

// store keeps lifetime counters in the metrics table.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new metrics store.
func New(db *sql.DB) MetricsStore {
	return &store{db: db}
}

// Increment upserts a counter and adds one. Failures are logged, never returned:
// counting must not break the operation being counted.
func (s *store) Increment(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metrics (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1`, key)
	if err != nil {
		log.Error("Failed to increment metric", "error", err, "key", key)
		return
	}
	log.Debug("Incremented metric", "key", key)
}

// Get returns a single counter, zero when it was never incremented.
func (s *store) Get(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value int
	err := s.db.QueryRow("SELECT value FROM metrics WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return value, err
}

// GetAll returns all counters.
func (s *store) GetAll() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT key, value FROM metrics")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make(map[string]int)
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		counters[key] = value
	}
	return counters, rows.Err()
}
