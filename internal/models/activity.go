package models

import (
	"strings"
	"time"
)

// DefaultCategory is applied when a new activity omits its category.
const DefaultCategory = "general"

// Activity is a single logged entry. Records are create-then-read-only:
// no update or delete surface exists, and ID and CreatedAt never change
// once assigned by the storage backend.
type Activity struct {
	ID        int64     `bson:"id" json:"id"`
	Content   string    `bson:"content" json:"content"`
	Category  string    `bson:"category" json:"category"`
	Details   string    `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CreateActivityRequest is the POST /api/activities payload.
type CreateActivityRequest struct {
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
	Details  string `json:"details,omitempty"`
}

// Validate checks required fields and fills defaults.
func (r *CreateActivityRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return ErrContentRequired
	}
	if strings.TrimSpace(r.Category) == "" {
		r.Category = DefaultCategory
	}
	return nil
}
