package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/CG3-Media/dexo-activity/internal/models"
)

// ErrNotFound is returned when no activity exists for the requested id.
var ErrNotFound = errors.New("activity not found")

// Filter narrows a List call. Zero values mean "no filter": an empty
// Search matches everything, an empty Date selects all days, and a
// non-positive Limit returns all matches.
type Filter struct {
	Search string // case-insensitive substring of content or category
	Date   string // YYYY-MM-DD calendar day in the store's configured zone
	Limit  int
	Offset int
}

// Store is the persistence interface for activities. Implementations own
// the persisted record set; callers only ever see per-request snapshots.
type Store interface {
	// Append persists a new activity, assigning its ID and CreatedAt.
	Append(ctx context.Context, activity *models.Activity) error

	// List returns activities matching the filter, most recent first.
	List(ctx context.Context, filter Filter) ([]models.Activity, error)

	// Get fetches one activity by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*models.Activity, error)

	// DistinctDays returns up to limit calendar days (YYYY-MM-DD, in the
	// store's configured zone) that have at least one activity, most
	// recent first.
	DistinctDays(ctx context.Context, limit int) ([]string, error)

	Close() error
}

// dayWindow converts a YYYY-MM-DD day in loc to a [start, end) UTC window.
// ok is false when the date does not parse; per the filter contract that
// means zero matches, not an error.
func dayWindow(date string, loc *time.Location) (start, end time.Time, ok bool) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	start = day.UTC()
	end = day.AddDate(0, 0, 1).UTC()
	return start, end, true
}

// localDay formats a timestamp as its YYYY-MM-DD calendar day in loc.
func localDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// matchesSearch reports whether the activity's content or category contains
// term, case-insensitively. Details are deliberately excluded from search.
func matchesSearch(a *models.Activity, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(a.Content), term) ||
		strings.Contains(strings.ToLower(a.Category), term)
}
