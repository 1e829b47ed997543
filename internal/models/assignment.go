package models

import "time"

// Assignment statuses
const (
	AssignmentPending   = "pending"
	AssignmentSubmitted = "submitted"
	AssignmentExpired   = "expired"
)

// Assignment links a lesson to a learner
type Assignment struct {
	ID          int64
	LessonID    int64
	LearnerID   int64
	Status      string
	AssignedAt  time.Time
	DueAt       *time.Time
	SubmittedAt *time.Time
}

// IsPending reports whether the assignment still accepts draft mutations
func (a *Assignment) IsPending() bool {
	return a.Status == AssignmentPending
}
