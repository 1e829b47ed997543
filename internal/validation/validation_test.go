package validation

import (
	"testing"

	"lyricclash/internal/models"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func validLesson() *models.Lesson {
	return &models.Lesson{
		Title:      "Sound of Silence",
		Transcript: "Hello darkness my old friend",
		Lines: []models.LyricLine{
			{ID: "line-1", Text: "Hello darkness my old friend", StartTime: floatPtr(12.5), EndTime: floatPtr(15.0)},
		},
		Settings: models.DefaultPracticeSettings(),
	}
}

func TestValidateLesson(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Lesson)
		wantErr bool
	}{
		{
			name:    "valid lesson",
			mutate:  func(l *models.Lesson) {},
			wantErr: false,
		},
		{
			name:    "missing title",
			mutate:  func(l *models.Lesson) { l.Title = "  " },
			wantErr: true,
		},
		{
			name: "audio without transcript is allowed",
			mutate: func(l *models.Lesson) {
				l.Transcript = ""
				l.AudioURL = "uploads/silence.mp3"
			},
			wantErr: false,
		},
		{
			name: "no transcript and no audio",
			mutate: func(l *models.Lesson) {
				l.Transcript = ""
				l.AudioURL = ""
			},
			wantErr: true,
		},
		{
			name:    "no lines",
			mutate:  func(l *models.Lesson) { l.Lines = nil },
			wantErr: true,
		},
		{
			name:    "empty line text",
			mutate:  func(l *models.Lesson) { l.Lines[0].Text = "   " },
			wantErr: true,
		},
		{
			name:    "negative start time",
			mutate:  func(l *models.Lesson) { l.Lines[0].StartTime = floatPtr(-1) },
			wantErr: true,
		},
		{
			name: "end before start",
			mutate: func(l *models.Lesson) {
				l.Lines[0].StartTime = floatPtr(10)
				l.Lines[0].EndTime = floatPtr(8)
			},
			wantErr: true,
		},
		{
			name: "untimed line is allowed",
			mutate: func(l *models.Lesson) {
				l.Lines[0].StartTime = nil
				l.Lines[0].EndTime = nil
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lesson := validLesson()
			tt.mutate(lesson)
			err := ValidateLesson(lesson)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLesson() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings models.PracticeSettings
		wantErr  bool
	}{
		{
			name:     "defaults",
			settings: models.DefaultPracticeSettings(),
			wantErr:  false,
		},
		{
			name:     "full difficulty",
			settings: models.PracticeSettings{DefaultMode: models.ModeFill, FillBlankDifficulty: 1.0},
			wantErr:  false,
		},
		{
			name:     "zero difficulty",
			settings: models.PracticeSettings{DefaultMode: models.ModeFill, FillBlankDifficulty: 0},
			wantErr:  true,
		},
		{
			name:     "difficulty above one",
			settings: models.PracticeSettings{DefaultMode: models.ModeFill, FillBlankDifficulty: 1.5},
			wantErr:  true,
		},
		{
			name:     "unknown mode",
			settings: models.PracticeSettings{DefaultMode: "listen", FillBlankDifficulty: 0.5},
			wantErr:  true,
		},
		{
			name: "negative switch limit",
			settings: models.PracticeSettings{
				DefaultMode:         models.ModeBoth,
				FillBlankDifficulty: 0.5,
				MaxReadModeSwitches: intPtr(-1),
			},
			wantErr: true,
		},
		{
			name: "zero switch limit is allowed",
			settings: models.PracticeSettings{
				DefaultMode:         models.ModeBoth,
				FillBlankDifficulty: 0.5,
				MaxReadModeSwitches: intPtr(0),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettings(tt.settings)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
