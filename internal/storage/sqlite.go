package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/CG3-Media/dexo-activity/internal/models"

	_ "modernc.org/sqlite"
)

const sqliteTimeFormat = "2006-01-02T15:04:05Z"

// SQLiteStore is the embedded-SQL backend. Timestamps are stored as UTC
// RFC3339 strings so lexicographic ordering matches chronological ordering.
type SQLiteStore struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteStore opens (or creates) the database file and ensures the
// schema exists. Schema creation is idempotent; the details column is
// added additively for databases created before it existed.
func NewSQLiteStore(path string, loc *time.Location) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// The driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, loc: loc}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_activities_created_at
			ON activities (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Additive migration for databases created before details existed.
	if _, err := s.db.Exec(`ALTER TABLE activities ADD COLUMN details TEXT`); err != nil {
		if !strings.Contains(err.Error(), "duplicate column name") {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, activity *models.Activity) error {
	activity.CreatedAt = time.Now().UTC().Truncate(time.Second)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (content, category, details, created_at) VALUES (?, ?, ?, ?)`,
		activity.Content, activity.Category, nullable(activity.Details),
		activity.CreatedAt.Format(sqliteTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	activity.ID = id
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]models.Activity, error) {
	query := `SELECT id, content, category, details, created_at FROM activities`
	var where []string
	var args []interface{}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		where = append(where, `(LOWER(content) LIKE ? OR LOWER(category) LIKE ?)`)
		args = append(args, pattern, pattern)
	}
	if filter.Date != "" {
		start, end, ok := dayWindow(filter.Date, s.loc)
		if !ok {
			return []models.Activity{}, nil
		}
		where = append(where, `created_at >= ? AND created_at < ?`)
		args = append(args, start.Format(sqliteTimeFormat), end.Format(sqliteTimeFormat))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*models.Activity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, category, details, created_at FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// DistinctDays converts stored timestamps to the configured zone in Go;
// SQLite only knows the process-local zone, not an arbitrary one.
func (s *SQLiteStore) DistinctDays(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at FROM activities ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity days: %w", err)
	}
	defer rows.Close()

	days := make([]string, 0, limit)
	seen := make(map[string]bool)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		t, err := time.Parse(sqliteTimeFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored timestamp: %w", err)
		}
		day := localDay(t, s.loc)
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
		if len(days) >= limit {
			break
		}
	}
	return days, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	var a models.Activity
	var details sql.NullString
	var raw string
	if err := row.Scan(&a.ID, &a.Content, &a.Category, &details, &raw); err != nil {
		return nil, err
	}
	a.Details = details.String
	t, err := time.Parse(sqliteTimeFormat, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored timestamp: %w", err)
	}
	a.CreatedAt = t
	return &a, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
