package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lyricclash/internal/lyrics"
	"lyricclash/internal/models"
	"lyricclash/internal/repository"
	"lyricclash/internal/validation"
)

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrNotLessonOwner = errors.New("lesson belongs to another author")
)

// LessonService handles authoring business logic
type LessonService struct {
	lessonRepo     *repository.LessonRepository
	assignmentRepo *repository.AssignmentRepository
}

// NewLessonService creates a new lesson service
func NewLessonService(lessonRepo *repository.LessonRepository, assignmentRepo *repository.AssignmentRepository) *LessonService {
	return &LessonService{lessonRepo: lessonRepo, assignmentRepo: assignmentRepo}
}

// CreateLesson builds a lesson from a raw transcript. When the text carries
// timestamp tags the lines come out timed; otherwise each non-empty text line
// becomes an untimed line and playback falls back to dwell-based pacing.
func (s *LessonService) CreateLesson(authorID int64, title, rawTranscript, audioURL string, settings models.PracticeSettings) (*models.Lesson, error) {
	parsed := lyrics.ParseTimestamps(rawTranscript)

	lines := parsed.Lines
	transcript := parsed.Transcript
	if len(lines) == 0 {
		lines = untimedLines(rawTranscript)
		transcript = rawTranscript
	}

	lesson := &models.Lesson{
		Title:      title,
		Transcript: transcript,
		AudioURL:   audioURL,
		Lines:      lines,
		Settings:   settings,
		CreatedBy:  authorID,
	}

	if err := validation.ValidateLesson(lesson); err != nil {
		return nil, err
	}

	created, err := s.lessonRepo.CreateLesson(lesson)
	if err != nil {
		return nil, fmt.Errorf("failed to persist lesson: %w", err)
	}
	return created, nil
}

// untimedLines converts plain text into one untimed line per non-empty row
func untimedLines(rawTranscript string) []models.LyricLine {
	var lines []models.LyricLine
	for _, row := range strings.Split(rawTranscript, "\n") {
		text := strings.TrimSpace(row)
		if text == "" {
			continue
		}
		lines = append(lines, models.LyricLine{ID: uuid.NewString(), Text: text})
	}
	return lines
}

// GetLesson retrieves a lesson by ID
func (s *LessonService) GetLesson(lessonID int64) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetLessonByID(lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	return lesson, nil
}

// UpdateLesson replaces an owned lesson's content after validation, so an
// edit can never leave a lesson without lines
func (s *LessonService) UpdateLesson(authorID int64, lesson *models.Lesson) error {
	existing, err := s.lessonRepo.GetLessonByID(lesson.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrLessonNotFound
	}
	if existing.CreatedBy != authorID {
		return ErrNotLessonOwner
	}

	if err := validation.ValidateLesson(lesson); err != nil {
		return err
	}
	lesson.CreatedBy = existing.CreatedBy

	return s.lessonRepo.UpdateLesson(lesson)
}

// DeleteLesson removes an owned lesson
func (s *LessonService) DeleteLesson(authorID, lessonID int64) error {
	existing, err := s.lessonRepo.GetLessonByID(lessonID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrLessonNotFound
	}
	if existing.CreatedBy != authorID {
		return ErrNotLessonOwner
	}
	return s.lessonRepo.DeleteLesson(lessonID)
}

// ListLessons retrieves an author's lessons
func (s *LessonService) ListLessons(authorID int64) ([]models.Lesson, error) {
	return s.lessonRepo.GetLessonsByAuthor(authorID)
}

// AssignLesson assigns an owned lesson to a learner
func (s *LessonService) AssignLesson(authorID, lessonID, learnerID int64, dueAt *time.Time) (*models.Assignment, error) {
	lesson, err := s.lessonRepo.GetLessonByID(lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if lesson.CreatedBy != authorID {
		return nil, ErrNotLessonOwner
	}
	return s.assignmentRepo.CreateAssignment(lessonID, learnerID, dueAt)
}
