package repository

import (
	"database/sql"
	"fmt"
	"time"

	"lyricclash/internal/database"
	"lyricclash/internal/models"
)

// AssignmentRepository handles database operations for assignments
type AssignmentRepository struct {
	db database.DBTX
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db database.DBTX) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// CreateAssignment assigns a lesson to a learner
func (r *AssignmentRepository) CreateAssignment(lessonID, learnerID int64, dueAt *time.Time) (*models.Assignment, error) {
	query := "INSERT INTO assignments (lesson_id, learner_id, status, due_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, lessonID, learnerID, models.AssignmentPending, dueAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return r.GetAssignmentByID(id)
}

// GetAssignmentByID retrieves an assignment by ID
func (r *AssignmentRepository) GetAssignmentByID(assignmentID int64) (*models.Assignment, error) {
	query := `
		SELECT id, lesson_id, learner_id, status, assigned_at, due_at, submitted_at
		FROM assignments
		WHERE id = ?
	`
	assignment := &models.Assignment{}
	var dueAt, submittedAt sql.NullTime
	err := r.db.QueryRow(query, assignmentID).Scan(
		&assignment.ID,
		&assignment.LessonID,
		&assignment.LearnerID,
		&assignment.Status,
		&assignment.AssignedAt,
		&dueAt,
		&submittedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if dueAt.Valid {
		assignment.DueAt = &dueAt.Time
	}
	if submittedAt.Valid {
		assignment.SubmittedAt = &submittedAt.Time
	}

	return assignment, nil
}

// GetLearnerAssignments retrieves all assignments for a learner, newest first
func (r *AssignmentRepository) GetLearnerAssignments(learnerID int64) ([]models.Assignment, error) {
	query := `
		SELECT id, lesson_id, learner_id, status, assigned_at, due_at, submitted_at
		FROM assignments
		WHERE learner_id = ?
		ORDER BY assigned_at DESC
	`
	rows, err := r.db.Query(query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var assignment models.Assignment
		var dueAt, submittedAt sql.NullTime
		if err := rows.Scan(
			&assignment.ID,
			&assignment.LessonID,
			&assignment.LearnerID,
			&assignment.Status,
			&assignment.AssignedAt,
			&dueAt,
			&submittedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if dueAt.Valid {
			assignment.DueAt = &dueAt.Time
		}
		if submittedAt.Valid {
			assignment.SubmittedAt = &submittedAt.Time
		}
		assignments = append(assignments, assignment)
	}

	return assignments, rows.Err()
}

// MarkSubmitted transitions a pending assignment to submitted. Returns false
// when the assignment was not pending, so a double submit cannot overwrite.
func (r *AssignmentRepository) MarkSubmitted(assignmentID int64, submittedAt time.Time) (bool, error) {
	query := "UPDATE assignments SET status = ?, submitted_at = ? WHERE id = ? AND status = ?"
	result, err := r.db.Exec(query, models.AssignmentSubmitted, submittedAt, assignmentID, models.AssignmentPending)
	if err != nil {
		return false, fmt.Errorf("failed to mark assignment submitted: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check submission update: %w", err)
	}
	return affected == 1, nil
}

// ExpireOverdue marks pending assignments past their due date as expired and
// returns how many were transitioned
func (r *AssignmentRepository) ExpireOverdue(now time.Time) (int64, error) {
	query := "UPDATE assignments SET status = ? WHERE status = ? AND due_at IS NOT NULL AND due_at < ?"
	result, err := r.db.Exec(query, models.AssignmentExpired, models.AssignmentPending, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire assignments: %w", err)
	}
	return result.RowsAffected()
}
