package service

import (
	"testing"
	"time"

	"lyricclash/internal/models"
)

func TestInitialMode(t *testing.T) {
	tests := []struct {
		name        string
		defaultMode string
		expected    string
	}{
		{
			name:        "both starts in read-along",
			defaultMode: models.ModeBoth,
			expected:    models.ModeRead,
		},
		{
			name:        "read starts in read-along",
			defaultMode: models.ModeRead,
			expected:    models.ModeRead,
		},
		{
			name:        "fill starts in fill",
			defaultMode: models.ModeFill,
			expected:    models.ModeFill,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := initialMode(tt.defaultMode)
			if result != tt.expected {
				t.Errorf("initialMode(%q) = %v, want %v", tt.defaultMode, result, tt.expected)
			}
		})
	}
}

func TestBaseRemaining(t *testing.T) {
	limit := func(n int) *int { return &n }

	tests := []struct {
		name     string
		limit    *int
		used     int
		expected *int
	}{
		{
			name:     "unlimited stays unlimited",
			limit:    nil,
			used:     5,
			expected: nil,
		},
		{
			name:     "unused limit",
			limit:    limit(3),
			used:     0,
			expected: limit(3),
		},
		{
			name:     "partially spent",
			limit:    limit(3),
			used:     2,
			expected: limit(1),
		},
		{
			name:     "overspent draft clamps to zero",
			limit:    limit(2),
			used:     5,
			expected: limit(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := baseRemaining(tt.limit, tt.used)
			if (result == nil) != (tt.expected == nil) {
				t.Fatalf("baseRemaining() = %v, want %v", result, tt.expected)
			}
			if result != nil && *result != *tt.expected {
				t.Errorf("baseRemaining() = %d, want %d", *result, *tt.expected)
			}
		})
	}
}

func TestTimeTakenSeconds(t *testing.T) {
	loadedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	submittedAt := loadedAt.Add(5 * time.Minute)

	tests := []struct {
		name              string
		playbackStartedAt time.Time
		expected          float64
	}{
		{
			name:              "measured from first playback",
			playbackStartedAt: loadedAt.Add(90 * time.Second),
			expected:          210,
		},
		{
			name:              "never played falls back to load time",
			playbackStartedAt: time.Time{},
			expected:          300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := timeTakenSeconds(loadedAt, tt.playbackStartedAt, submittedAt)
			if result != tt.expected {
				t.Errorf("timeTakenSeconds() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUntimedLines(t *testing.T) {
	lines := untimedLines("Hello darkness my old friend\n\n  I've come to talk with you again  \n")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "Hello darkness my old friend" {
		t.Errorf("first line = %q", lines[0].Text)
	}
	if lines[1].Text != "I've come to talk with you again" {
		t.Errorf("second line = %q", lines[1].Text)
	}
	for i, line := range lines {
		if line.ID == "" {
			t.Errorf("line %d has no id", i)
		}
		if line.StartTime != nil || line.EndTime != nil {
			t.Errorf("line %d should carry no timing", i)
		}
	}
}
