package services

import (
	"context"

	"github.com/CG3-Media/dexo-activity/internal/models"
	"github.com/CG3-Media/dexo-activity/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultLimit applies when the API caller does not pass one.
	DefaultLimit = 50
	// MaxLimit is the hard cap on a single listing.
	MaxLimit = 200
	// PageLimit is how many records the HTML timeline shows.
	PageLimit = 100
	// DayTabLimit caps the date-tab navigation.
	DayTabLimit = 14
)

type ActivityService struct {
	store storage.Store
}

func NewActivityService(store storage.Store) *ActivityService {
	return &ActivityService{store: store}
}

// CreateActivity validates the request, applies the category default, and
// persists the record.
func (s *ActivityService) CreateActivity(ctx context.Context, req *models.CreateActivityRequest) (*models.Activity, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		Content:  req.Content,
		Category: req.Category,
		Details:  req.Details,
	}
	if err := s.store.Append(ctx, activity); err != nil {
		logrus.WithError(err).Error("Failed to store activity")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"id":       activity.ID,
		"category": activity.Category,
	}).Info("Activity logged")

	return activity, nil
}

// ListActivities clamps the filter's limit to [1, MaxLimit] (defaulting to
// DefaultLimit when unset) and its offset to >= 0, then queries the store.
func (s *ActivityService) ListActivities(ctx context.Context, filter storage.Filter) ([]models.Activity, error) {
	if filter.Limit == 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit < 1 {
		filter.Limit = 1
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.List(ctx, filter)
}

// GetActivity fetches a single record by id.
func (s *ActivityService) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	return s.store.Get(ctx, id)
}

// TimelineActivities returns the records for the HTML page: the most
// recent PageLimit matches, no pagination.
func (s *ActivityService) TimelineActivities(ctx context.Context, search, date string) ([]models.Activity, error) {
	return s.store.List(ctx, storage.Filter{Search: search, Date: date, Limit: PageLimit})
}

// RecentDays lists the calendar days that have activities, for the date tabs.
func (s *ActivityService) RecentDays(ctx context.Context) ([]string, error) {
	return s.store.DistinctDays(ctx, DayTabLimit)
}
