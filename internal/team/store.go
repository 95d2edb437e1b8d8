package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var _ TeamStore = (*store)(nil)

// store handles team-related database operations.
type store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// New creates a new team store.
func New(db *sql.DB) TeamStore {
	return &store{db: db, now: time.Now}
}

const teamColumns = `id, date, time, role, gender, phone, representative_id, intro, student_id_url,
	is_verified, status, process_step, wants_info, shares_info, has_paid, has_confirmed,
	is_public_room, info_exchange_status, created_at, updated_at`

func (s *store) Create(ctx context.Context, t *Team) error {
	if t.Date == "" || t.Time == "" || t.Phone == "" {
		return fmt.Errorf("%w: date, time and phone are required", ErrInvalidTeam)
	}
	if t.Role != RoleHost && t.Role != RoleGuest {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidTeam, t.Role)
	}
	if len(t.Members) > MaxMembers {
		return fmt.Errorf("%w: at most %d members", ErrInvalidTeam, MaxMembers)
	}
	if t.Status == "" {
		t.Status = StatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if t.Role == RoleHost {
		var existing int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM teams WHERE date = ? AND time = ? AND role = 'HOST'`,
			t.Date, t.Time).Scan(&existing)
		if err != nil {
			return fmt.Errorf("failed to check for existing host: %w", err)
		}
		if existing > 0 {
			return ErrHostExists
		}
	}

	now := s.now()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt, t.UpdatedAt = now, now

	_, err = tx.ExecContext(ctx, `INSERT INTO teams (`+teamColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date, t.Time, t.Role, t.Gender, t.Phone, t.RepresentativeID, t.Intro, t.StudentIDURL,
		t.IsVerified, t.Status, nullString(t.ProcessStep), nullBool(t.WantsInfo), nullBool(t.SharesInfo),
		t.HasPaid, nullBool(t.HasConfirmed), t.IsPublicRoom, nullString(t.InfoExchangeStatus),
		now.UnixMilli(), now.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrHostExists
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}

	for i := range t.Members {
		m := &t.Members[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.TeamID = t.ID
		m.Position = i
		_, err := tx.ExecContext(ctx,
			`INSERT INTO members (id, team_id, position, age, university, department, instagram)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.TeamID, m.Position, m.Age, m.University, m.Department, emptyAsNull(m.Instagram))
		if err != nil {
			return fmt.Errorf("failed to insert member %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team: %w", err)
	}
	log.Debug("Created team", "id", t.ID, "date", t.Date, "time", t.Time, "role", t.Role)
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teams, err := s.query(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrNotFound
	}
	return &teams[0], nil
}

func (s *store) ListByDate(ctx context.Context, date string) ([]Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.query(ctx, `SELECT `+teamColumns+` FROM teams WHERE date = ?
		ORDER BY time ASC, created_at ASC, rowid ASC`, date)
}

func (s *store) ListBySlot(ctx context.Context, date, time string) ([]Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.query(ctx, `SELECT `+teamColumns+` FROM teams WHERE date = ? AND time = ?
		ORDER BY created_at ASC, rowid ASC`, date, time)
}

func (s *store) Update(ctx context.Context, id string, u Update) (*Team, error) {
	teams, err := s.UpdateMany(ctx, []string{id}, u)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrNotFound
	}
	return &teams[0], nil
}

func (s *store) UpdateMany(ctx context.Context, ids []string, u Update) ([]Team, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no team ids given", ErrInvalidTeam)
	}
	cols, args, err := u.assignments()
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: update has no fields", ErrInvalidTeam)
	}
	cols = append(cols, "updated_at = ?")
	args = append(args, s.now().UnixMilli())

	s.mu.Lock()
	defer s.mu.Unlock()

	in, idArgs := inClause(ids)
	args = append(args, idArgs...)
	_, err = s.db.ExecContext(ctx,
		`UPDATE teams SET `+strings.Join(cols, ", ")+` WHERE id IN `+in, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update teams: %w", err)
	}
	return s.query(ctx, `SELECT `+teamColumns+` FROM teams WHERE id IN `+in+`
		ORDER BY created_at ASC, rowid ASC`, idArgs...)
}

func (s *store) Delete(ctx context.Context, id string) error {
	n, err := s.DeleteMany(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *store) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no team ids given", ErrInvalidTeam)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	in, args := inClause(ids)
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id IN `+in, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete teams: %w", err)
	}
	n, _ := res.RowsAffected()
	log.Debug("Deleted teams", "count", n)
	return n, nil
}

func (s *store) DeleteSlot(ctx context.Context, date, time string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE date = ? AND time = ?`, date, time)
	if err != nil {
		return 0, fmt.Errorf("failed to delete slot teams: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// query loads teams and attaches their members. Callers hold the lock.
func (s *store) query(ctx context.Context, q string, args ...any) ([]Team, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	index := make(map[string]int)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		index[t.ID] = len(teams)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	if len(teams) == 0 {
		return []Team{}, nil
	}

	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
		teams[i].Members = []Member{}
	}
	in, idArgs := inClause(ids)
	mrows, err := s.db.QueryContext(ctx, `SELECT id, team_id, position, age, university, department, instagram
		FROM members WHERE team_id IN `+in+` ORDER BY team_id, position`, idArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var m Member
		var insta sql.NullString
		if err := mrows.Scan(&m.ID, &m.TeamID, &m.Position, &m.Age, &m.University, &m.Department, &insta); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Instagram = insta.String
		i := index[m.TeamID]
		teams[i].Members = append(teams[i].Members, m)
	}
	if err := mrows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return teams, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTeam(row scanner) (Team, error) {
	var (
		t                       Team
		step, exchange          sql.NullString
		wants, shares, confirmd sql.NullBool
		created, updated        int64
	)
	err := row.Scan(&t.ID, &t.Date, &t.Time, &t.Role, &t.Gender, &t.Phone, &t.RepresentativeID,
		&t.Intro, &t.StudentIDURL, &t.IsVerified, &t.Status, &step, &wants, &shares, &t.HasPaid,
		&confirmd, &t.IsPublicRoom, &exchange, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("failed to scan team: %w", err)
	}
	if step.Valid {
		p := ProcessStep(step.String)
		t.ProcessStep = &p
	}
	if exchange.Valid {
		e := ExchangeStatus(exchange.String)
		t.InfoExchangeStatus = &e
	}
	t.WantsInfo = boolPtr(wants)
	t.SharesInfo = boolPtr(shares)
	t.HasConfirmed = boolPtr(confirmd)
	t.CreatedAt = time.UnixMilli(created)
	t.UpdatedAt = time.UnixMilli(updated)
	return t, nil
}

func inClause(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}

func boolPtr(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	v := b.Bool
	return &v
}

func nullBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func nullString[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func emptyAsNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}
