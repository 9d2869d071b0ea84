package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/CG3-Media/dexo-activity/internal/models"

	_ "github.com/lib/pq"
)

// PostgresStore is the remote relational backend. Date bucketing is pushed
// into the query so the database converts timestamps to the configured
// zone instead of shipping every row back for filtering.
type PostgresStore struct {
	db  *sql.DB
	loc *time.Location
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(databaseURL string, loc *time.Location) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresStore{db: db, loc: loc}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS activities (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	// Additive migration for databases created before details existed.
	if _, err := s.db.Exec(`ALTER TABLE activities ADD COLUMN IF NOT EXISTS details TEXT`); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_activities_created_at
		ON activities (created_at DESC)`); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, activity *models.Activity) error {
	activity.CreatedAt = time.Now().UTC()

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO activities (content, category, details, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		activity.Content, activity.Category, nullable(activity.Details), activity.CreatedAt,
	).Scan(&activity.ID)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]models.Activity, error) {
	query := `SELECT id, content, category, details, created_at FROM activities`
	var where []string
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(`(content ILIKE $%d OR category ILIKE $%d)`, n, n))
	}
	if filter.Date != "" {
		args = append(args, s.loc.String(), filter.Date)
		where = append(where, fmt.Sprintf(
			`to_char(created_at AT TIME ZONE $%d, 'YYYY-MM-DD') = $%d`, len(args)-1, len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	for rows.Next() {
		var a models.Activity
		var details sql.NullString
		if err := rows.Scan(&a.ID, &a.Content, &a.Category, &details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Details = details.String
		a.CreatedAt = a.CreatedAt.UTC()
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*models.Activity, error) {
	var a models.Activity
	var details sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content, category, details, created_at FROM activities WHERE id = $1`, id,
	).Scan(&a.ID, &a.Content, &a.Category, &details, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity: %w", err)
	}
	a.Details = details.String
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

func (s *PostgresStore) DistinctDays(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT to_char(created_at AT TIME ZONE $1, 'YYYY-MM-DD') AS day
		 FROM activities ORDER BY day DESC LIMIT $2`,
		s.loc.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity days: %w", err)
	}
	defer rows.Close()

	days := make([]string, 0, limit)
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
