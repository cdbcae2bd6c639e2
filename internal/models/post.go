package models

import (
	"time"

	"github.com/google/uuid"
)

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// Post represents a post authored by a user
type Post struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Status    string    `json:"status"` // draft, published, archived
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidPostStatus reports whether s is a known post status.
func ValidPostStatus(s string) bool {
	return s == PostStatusDraft || s == PostStatusPublished || s == PostStatusArchived
}
