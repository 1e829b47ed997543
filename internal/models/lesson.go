package models

import "time"

// Practice modes
const (
	ModeRead = "read"
	ModeFill = "fill"
	ModeBoth = "both" // Lesson default only; a draft is always read or fill
)

// PracticeSettings holds per-lesson practice configuration
type PracticeSettings struct {
	DefaultMode         string  `json:"defaultMode"`
	FillBlankDifficulty float64 `json:"fillBlankDifficulty"` // Fraction in (0,1] of eligible words hidden per line
	MaxReadModeSwitches *int    `json:"maxReadModeSwitches"` // Nil means unlimited
}

// DefaultPracticeSettings returns the settings applied to a freshly created lesson
func DefaultPracticeSettings() PracticeSettings {
	return PracticeSettings{
		DefaultMode:         ModeBoth,
		FillBlankDifficulty: 0.3,
		MaxReadModeSwitches: nil,
	}
}

// Lesson represents an authored lyric lesson
type Lesson struct {
	ID         int64
	Title      string
	Transcript string // Plain-text transcript, tag-free
	AudioURL   string // Opaque reference to the uploaded audio asset
	Lines      []LyricLine
	Settings   PracticeSettings
	CreatedBy  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
