// Package store persists generated plans per user.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
)

// ErrNotFound is returned when a plan does not exist or belongs to another
// user.
var ErrNotFound = errors.New("plan not found")

// Plan kinds.
const (
	KindLessonPlan = "lesson_plan"
	KindInitiative = "initiative"
)

// Plan is a saved generation result. Request holds the form that produced it.
type Plan struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"not null;index;size:64" json:"user_id"`
	Title     string         `gorm:"not null" json:"title"`
	Kind      string         `gorm:"not null;size:20" json:"kind"`
	Content   string         `gorm:"type:text" json:"content"`
	Request   datatypes.JSON `gorm:"type:json" json:"request,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

// TableName matches the managed backend table.
func (Plan) TableName() string {
	return "lesson_plans"
}

// Store is implemented by SQLStore and SupabaseStore.
type Store interface {
	// Create assigns ID and CreatedAt when empty and saves p.
	Create(ctx context.Context, p *Plan) error
	// List returns the user's plans, newest first.
	List(ctx context.Context, userID string) ([]Plan, error)
	Get(ctx context.Context, id, userID string) (*Plan, error)
	Delete(ctx context.Context, id, userID string) error
}
