package validation

import (
	"fmt"
	"strings"

	"lyricclash/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateLessonTitle checks that a lesson title is present
func ValidateLessonTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

// ValidateSettings checks per-lesson practice settings
func ValidateSettings(settings models.PracticeSettings) error {
	switch settings.DefaultMode {
	case models.ModeRead, models.ModeFill, models.ModeBoth:
	default:
		return ValidationError{Field: "defaultMode", Message: "default mode must be read, fill or both"}
	}
	if settings.FillBlankDifficulty <= 0 || settings.FillBlankDifficulty > 1 {
		return ValidationError{Field: "fillBlankDifficulty", Message: "difficulty must be greater than 0 and at most 1"}
	}
	if settings.MaxReadModeSwitches != nil && *settings.MaxReadModeSwitches < 0 {
		return ValidationError{Field: "maxReadModeSwitches", Message: "switch limit cannot be negative"}
	}
	return nil
}

// ValidateLesson checks a lesson is complete enough to be assigned: a title,
// a transcript or audio reference, and at least one non-empty line with
// coherent timing
func ValidateLesson(lesson *models.Lesson) error {
	if err := ValidateLessonTitle(lesson.Title); err != nil {
		return err
	}
	if strings.TrimSpace(lesson.Transcript) == "" && strings.TrimSpace(lesson.AudioURL) == "" {
		return ValidationError{Field: "transcript", Message: "a transcript or audio reference is required"}
	}
	if len(lesson.Lines) == 0 {
		return ValidationError{Field: "lines", Message: "at least one line is required"}
	}
	for i, line := range lesson.Lines {
		if strings.TrimSpace(line.Text) == "" {
			return ValidationError{Field: "lines", Message: fmt.Sprintf("line %d has no text", i+1)}
		}
		if line.StartTime != nil && *line.StartTime < 0 {
			return ValidationError{Field: "lines", Message: fmt.Sprintf("line %d has a negative start time", i+1)}
		}
		if line.StartTime != nil && line.EndTime != nil && *line.EndTime < *line.StartTime {
			return ValidationError{Field: "lines", Message: fmt.Sprintf("line %d ends before it starts", i+1)}
		}
	}
	return ValidateSettings(lesson.Settings)
}
