package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lyricclash/internal/database"
	"lyricclash/internal/models"
)

// LessonRepository handles database operations for lessons and their lines
type LessonRepository struct {
	db database.DBTX
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db database.DBTX) *LessonRepository {
	return &LessonRepository{db: db}
}

// CreateLesson inserts a lesson and its lines in one transaction
func (r *LessonRepository) CreateLesson(lesson *models.Lesson) (*models.Lesson, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO lessons (title, transcript, audio_url, default_mode, fill_blank_difficulty, max_read_mode_switches, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	lessonID, err := tx.ExecReturningID(query,
		lesson.Title,
		lesson.Transcript,
		lesson.AudioURL,
		lesson.Settings.DefaultMode,
		lesson.Settings.FillBlankDifficulty,
		lesson.Settings.MaxReadModeSwitches,
		lesson.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	if err := insertLines(tx, lessonID, lesson.Lines); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lesson: %w", err)
	}

	lesson.ID = lessonID
	lesson.CreatedAt = time.Now()
	lesson.UpdatedAt = lesson.CreatedAt
	return lesson, nil
}

// UpdateLesson replaces a lesson's fields and lines in one transaction
func (r *LessonRepository) UpdateLesson(lesson *models.Lesson) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE lessons
		SET title = ?, transcript = ?, audio_url = ?, default_mode = ?,
		    fill_blank_difficulty = ?, max_read_mode_switches = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err = tx.Exec(query,
		lesson.Title,
		lesson.Transcript,
		lesson.AudioURL,
		lesson.Settings.DefaultMode,
		lesson.Settings.FillBlankDifficulty,
		lesson.Settings.MaxReadModeSwitches,
		lesson.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM lyric_lines WHERE lesson_id = ?", lesson.ID); err != nil {
		return fmt.Errorf("failed to clear lines: %w", err)
	}
	if err := insertLines(tx, lesson.ID, lesson.Lines); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lesson update: %w", err)
	}
	return nil
}

func insertLines(tx *database.Tx, lessonID int64, lines []models.LyricLine) error {
	query := `
		INSERT INTO lyric_lines (id, lesson_id, position, text, start_time, end_time, hidden_words)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for position, line := range lines {
		hiddenWords, err := json.Marshal(line.HiddenWords)
		if err != nil {
			return fmt.Errorf("failed to encode hidden words: %w", err)
		}
		if _, err := tx.Exec(query, line.ID, lessonID, position, line.Text, line.StartTime, line.EndTime, string(hiddenWords)); err != nil {
			return fmt.Errorf("failed to insert line: %w", err)
		}
	}
	return nil
}

// GetLessonByID retrieves a lesson with its lines in authored order
func (r *LessonRepository) GetLessonByID(lessonID int64) (*models.Lesson, error) {
	query := `
		SELECT id, title, transcript, audio_url, default_mode, fill_blank_difficulty,
		       max_read_mode_switches, created_by, created_at, updated_at
		FROM lessons
		WHERE id = ?
	`
	lesson := &models.Lesson{}
	var maxSwitches sql.NullInt64
	err := r.db.QueryRow(query, lessonID).Scan(
		&lesson.ID,
		&lesson.Title,
		&lesson.Transcript,
		&lesson.AudioURL,
		&lesson.Settings.DefaultMode,
		&lesson.Settings.FillBlankDifficulty,
		&maxSwitches,
		&lesson.CreatedBy,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	if maxSwitches.Valid {
		limit := int(maxSwitches.Int64)
		lesson.Settings.MaxReadModeSwitches = &limit
	}

	lines, err := r.getLessonLines(lessonID)
	if err != nil {
		return nil, err
	}
	lesson.Lines = lines

	return lesson, nil
}

func (r *LessonRepository) getLessonLines(lessonID int64) ([]models.LyricLine, error) {
	query := `
		SELECT id, text, start_time, end_time, hidden_words
		FROM lyric_lines
		WHERE lesson_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.Query(query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var lines []models.LyricLine
	for rows.Next() {
		var line models.LyricLine
		var hiddenWords string
		if err := rows.Scan(&line.ID, &line.Text, &line.StartTime, &line.EndTime, &hiddenWords); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		if err := json.Unmarshal([]byte(hiddenWords), &line.HiddenWords); err != nil {
			return nil, fmt.Errorf("failed to decode hidden words: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// GetLessonsByAuthor retrieves all lessons created by one author, newest first
func (r *LessonRepository) GetLessonsByAuthor(authorID int64) ([]models.Lesson, error) {
	query := `
		SELECT id, title, transcript, audio_url, default_mode, fill_blank_difficulty,
		       max_read_mode_switches, created_by, created_at, updated_at
		FROM lessons
		WHERE created_by = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		var maxSwitches sql.NullInt64
		if err := rows.Scan(
			&lesson.ID,
			&lesson.Title,
			&lesson.Transcript,
			&lesson.AudioURL,
			&lesson.Settings.DefaultMode,
			&lesson.Settings.FillBlankDifficulty,
			&maxSwitches,
			&lesson.CreatedBy,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		if maxSwitches.Valid {
			limit := int(maxSwitches.Int64)
			lesson.Settings.MaxReadModeSwitches = &limit
		}
		lessons = append(lessons, lesson)
	}

	return lessons, rows.Err()
}

// DeleteLesson deletes a lesson; lines and assignments cascade
func (r *LessonRepository) DeleteLesson(lessonID int64) error {
	_, err := r.db.Exec("DELETE FROM lessons WHERE id = ?", lessonID)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}
