package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/CG3-Media/dexo-activity/internal/models"
	"github.com/sirupsen/logrus"
)

// FileStore keeps all activities in memory and rewrites a single JSON file
// on every append. The mutex enforces single-writer discipline: without it,
// two concurrent appends would race on the full-file rewrite and the loser's
// record would be silently dropped.
type FileStore struct {
	path string
	loc  *time.Location

	mu         sync.Mutex
	activities []models.Activity
	nextID     int64
}

// NewFileStore loads the JSON file at path, creating it lazily on first
// append if it does not exist yet.
func NewFileStore(path string, loc *time.Location) (*FileStore, error) {
	s := &FileStore{path: path, loc: loc, nextID: 1}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.activities); err != nil {
			return nil, fmt.Errorf("failed to parse data file: %w", err)
		}
	}
	for i := range s.activities {
		if s.activities[i].ID >= s.nextID {
			s.nextID = s.activities[i].ID + 1
		}
	}
	return s, nil
}

// Append assigns the next id and timestamp, then rewrites the whole file.
func (s *FileStore) Append(ctx context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	activity.ID = s.nextID
	activity.CreatedAt = time.Now().UTC()

	s.activities = append(s.activities, *activity)
	if err := s.flush(); err != nil {
		// Roll back the in-memory append so memory and disk stay in sync.
		s.activities = s.activities[:len(s.activities)-1]
		logrus.WithError(err).Error("Failed to persist activity")
		return fmt.Errorf("failed to write data file: %w", err)
	}
	s.nextID++
	return nil
}

// flush writes the record set to a temp file and renames it into place.
// Caller must hold mu.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.activities, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".activities-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// List walks the records newest-first, applying filters in memory.
func (s *FileStore) List(ctx context.Context, filter Filter) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.Activity, 0)
	skipped := 0
	// Records are appended in insertion order and created_at is
	// non-decreasing, so walking backwards yields created_at descending.
	for i := len(s.activities) - 1; i >= 0; i-- {
		a := s.activities[i]
		if filter.Search != "" && !matchesSearch(&a, filter.Search) {
			continue
		}
		if filter.Date != "" && localDay(a.CreatedAt, s.loc) != filter.Date {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		matched = append(matched, a)
		if filter.Limit > 0 && len(matched) >= filter.Limit {
			break
		}
	}
	return matched, nil
}

// Get fetches one activity by id.
func (s *FileStore) Get(ctx context.Context, id int64) (*models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.activities {
		if s.activities[i].ID == id {
			a := s.activities[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

// DistinctDays buckets the records into local calendar days, newest first.
func (s *FileStore) DistinctDays(ctx context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := make([]string, 0, limit)
	seen := make(map[string]bool)
	for i := len(s.activities) - 1; i >= 0; i-- {
		day := localDay(s.activities[i].CreatedAt, s.loc)
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
		if len(days) >= limit {
			break
		}
	}
	return days, nil
}

func (s *FileStore) Close() error {
	return nil
}
