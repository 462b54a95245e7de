// Package sqlite implements calendar.Store backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentrelay/calendar"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed calendar event store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS calendar_events (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		location TEXT,
		all_day INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_start ON calendar_events(start_time);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Create implements calendar.Store.
func (s *Store) Create(ctx context.Context, ev *calendar.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	query := `
	INSERT INTO calendar_events (id, title, description, start_time, end_time, location, all_day, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		ev.ID, ev.Title, ev.Description,
		ev.Start.UnixNano(), ev.End.UnixNano(),
		ev.Location, boolToInt(ev.AllDay),
		now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Between implements calendar.Store.
func (s *Store) Between(ctx context.Context, start, end time.Time) ([]calendar.Event, error) {
	query := `
	SELECT id, title, description, start_time, end_time, location, all_day, created_at, updated_at
	FROM calendar_events
	WHERE start_time >= ? AND start_time < ?
	ORDER BY start_time ASC`

	rows, err := s.db.QueryContext(ctx, query, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

// Overlapping implements calendar.Store with closed-open interval semantics.
func (s *Store) Overlapping(ctx context.Context, start, end time.Time) ([]calendar.Event, error) {
	query := `
	SELECT id, title, description, start_time, end_time, location, all_day, created_at, updated_at
	FROM calendar_events
	WHERE (start_time <= ? AND end_time > ?)
	   OR (start_time < ? AND end_time >= ?)
	   OR (start_time >= ? AND end_time <= ?)
	ORDER BY start_time ASC`

	startNS, endNS := start.UnixNano(), end.UnixNano()
	rows, err := s.db.QueryContext(ctx, query, startNS, startNS, endNS, endNS, startNS, endNS)
	if err != nil {
		return nil, fmt.Errorf("query overlapping events: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]calendar.Event, error) {
	var out []calendar.Event
	for rows.Next() {
		var ev calendar.Event
		var description, location sql.NullString
		var startNS, endNS, createdNS, updatedNS int64
		var allDay int
		if err := rows.Scan(&ev.ID, &ev.Title, &description, &startNS, &endNS, &location, &allDay, &createdNS, &updatedNS); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		ev.Description = description.String
		ev.Location = location.String
		ev.Start = time.Unix(0, startNS).UTC()
		ev.End = time.Unix(0, endNS).UTC()
		ev.AllDay = allDay != 0
		ev.CreatedAt = time.Unix(0, createdNS).UTC()
		ev.UpdatedAt = time.Unix(0, updatedNS).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
