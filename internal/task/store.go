package task

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a task lookup misses.
var ErrNotFound = errors.New("task not found")

// Store persists tasks in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the task database at statePath/tasks.db.
func Open(statePath string) (*Store, error) {
	dbPath := filepath.Join(statePath, "tasks.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens an in-memory store, used by tests.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			priority TEXT NOT NULL DEFAULT 'medium',
			estimated_duration_minutes INTEGER,
			deadline_utc TEXT,
			notify_offsets_minutes TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a new task, assigning an ID and defaults where unset.
func (s *Store) Add(t *Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	now := time.Now().UTC().Truncate(time.Second)
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO tasks (id, title, description, status, priority,
			estimated_duration_minutes, deadline_utc, notify_offsets_minutes,
			tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority,
		durationValue(t), deadlineValue(t), t.NotifyOffsetsMinutes,
		t.Tags, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Get returns a task by ID, or ErrNotFound.
func (s *Store) Get(id string) (*Task, error) {
	row := s.db.QueryRow(selectColumns+` WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, err
}

// Update persists all fields of an existing task and bumps updated_at.
func (s *Store) Update(t *Task) error {
	t.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := s.db.Exec(`
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
			estimated_duration_minutes = ?, deadline_utc = ?,
			notify_offsets_minutes = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Description, t.Status, t.Priority,
		durationValue(t), deadlineValue(t),
		t.NotifyOffsetsMinutes, t.Tags, formatTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, t.ID)
	}
	return nil
}

// Delete removes a task by ID.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ListAll returns all tasks in insertion order. Ordering is stable across
// calls, which the apply/clarification flow relies on.
func (s *Store) ListAll() ([]*Task, error) {
	rows, err := s.db.Query(selectColumns + ` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// FindByTitle returns tasks whose title contains the given substring,
// case-insensitive, in insertion order.
func (s *Store) FindByTitle(substring string) ([]*Task, error) {
	pattern := "%" + escapeLike(substring) + "%"
	rows, err := s.db.Query(
		selectColumns+` WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\' ORDER BY rowid`,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

const selectColumns = `
	SELECT id, title, description, status, priority,
		estimated_duration_minutes, deadline_utc, notify_offsets_minutes,
		tags, created_at, updated_at
	FROM tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var duration sql.NullInt64
	var deadline sql.NullString
	var created, updated string

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&duration, &deadline, &t.NotifyOffsetsMinutes, &t.Tags, &created, &updated)
	if err != nil {
		return nil, err
	}

	if duration.Valid {
		d := int(duration.Int64)
		t.EstimatedDurationMinutes = &d
	}
	if deadline.Valid && deadline.String != "" {
		if ts, err := time.Parse(time.RFC3339, deadline.String); err == nil {
			ts = ts.UTC()
			t.DeadlineUTC = &ts
		}
	}
	if ts, err := time.Parse(time.RFC3339, created); err == nil {
		t.CreatedAt = ts.UTC()
	}
	if ts, err := time.Parse(time.RFC3339, updated); err == nil {
		t.UpdatedAt = ts.UTC()
	}
	return &t, nil
}

func scanTasks(rows *sql.Rows) ([]*Task, error) {
	var result []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func durationValue(t *Task) any {
	if t.EstimatedDurationMinutes == nil {
		return nil
	}
	return *t.EstimatedDurationMinutes
}

func deadlineValue(t *Task) any {
	if t.DeadlineUTC == nil {
		return nil
	}
	return t.DeadlineUTC.UTC().Format(time.RFC3339)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
