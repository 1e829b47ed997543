package repository

import (
	"database/sql"
	"fmt"

	"lyricclash/internal/database"
	"lyricclash/internal/models"
)

// SubmissionRepository handles database operations for graded submissions
type SubmissionRepository struct {
	db database.DBTX
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db database.DBTX) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CreateSubmission records a graded submission
func (r *SubmissionRepository) CreateSubmission(result *models.SubmissionResult) (*models.SubmissionResult, error) {
	query := `
		INSERT INTO submissions (assignment_id, lesson_id, score_percent, correct, total, time_taken_seconds, read_mode_switches_used, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		result.AssignmentID,
		result.LessonID,
		result.ScorePercent,
		result.Correct,
		result.Total,
		result.TimeTakenSeconds,
		result.ReadModeSwitchesUsed,
		result.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	result.ID = id
	return result, nil
}

// GetSubmissionByAssignment retrieves the submission for an assignment, nil
// when none exists
func (r *SubmissionRepository) GetSubmissionByAssignment(assignmentID int64) (*models.SubmissionResult, error) {
	query := `
		SELECT id, assignment_id, lesson_id, score_percent, correct, total, time_taken_seconds, read_mode_switches_used, submitted_at
		FROM submissions
		WHERE assignment_id = ?
		ORDER BY submitted_at DESC
		LIMIT 1
	`
	result := &models.SubmissionResult{}
	err := r.db.QueryRow(query, assignmentID).Scan(
		&result.ID,
		&result.AssignmentID,
		&result.LessonID,
		&result.ScorePercent,
		&result.Correct,
		&result.Total,
		&result.TimeTakenSeconds,
		&result.ReadModeSwitchesUsed,
		&result.SubmittedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return result, nil
}

// GetLessonSubmissions retrieves all submissions for a lesson, newest first
func (r *SubmissionRepository) GetLessonSubmissions(lessonID int64) ([]models.SubmissionResult, error) {
	query := `
		SELECT id, assignment_id, lesson_id, score_percent, correct, total, time_taken_seconds, read_mode_switches_used, submitted_at
		FROM submissions
		WHERE lesson_id = ?
		ORDER BY submitted_at DESC
	`
	rows, err := r.db.Query(query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var results []models.SubmissionResult
	for rows.Next() {
		var result models.SubmissionResult
		if err := rows.Scan(
			&result.ID,
			&result.AssignmentID,
			&result.LessonID,
			&result.ScorePercent,
			&result.Correct,
			&result.Total,
			&result.TimeTakenSeconds,
			&result.ReadModeSwitchesUsed,
			&result.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
