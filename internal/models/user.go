package models

import "time"

// User roles
const (
	RoleAuthor  = "author"
	RoleLearner = "learner"
)

// User represents an author or learner account.
// Registration and profile management live outside this service; the practice
// API only needs enough identity to gate endpoints and address notifications.
type User struct {
	ID             int64
	Name           string
	Email          string
	Role           string
	AccessCodeHash string
	CreatedAt      time.Time
}
