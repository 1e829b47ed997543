package playback

import (
	"testing"

	"lyricclash/internal/lyrics"
	"lyricclash/internal/models"
)

func timedLine(id string, start, end float64) lyrics.PreparedLine {
	return lyrics.PreparedLine{Line: models.LyricLine{ID: id, Text: id, StartTime: &start, EndTime: &end}}
}

func openLine(id string, start float64) lyrics.PreparedLine {
	return lyrics.PreparedLine{Line: models.LyricLine{ID: id, Text: id, StartTime: &start}}
}

func threeLines() []lyrics.PreparedLine {
	// Windows resolve to [0,5.5), [5,10.5), [10, 10+dwell) before grace
	// considerations; scan order makes them effectively [0,5), [5,10), [10,...)
	return []lyrics.PreparedLine{
		timedLine("first", 0, 5),
		timedLine("second", 5, 10),
		openLine("last", 10),
	}
}

func TestTrackerActiveLineSelection(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		want     string
	}{
		{name: "inside second window", position: 7.5, want: "second"},
		{name: "before start clamps to first", position: -1, want: "first"},
		{name: "far past the end falls back to last", position: 1000, want: "last"},
		{name: "start of first line", position: 0, want: "first"},
		{name: "past all grace windows", position: 10.7, want: "last"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(&CommandRecorder{}, threeLines())
			got, _ := tracker.Tick(tt.position)
			if got != tt.want {
				t.Errorf("Tick(%v) = %q, want %q", tt.position, got, tt.want)
			}
		})
	}
}

func TestTrackerRetainsLineInGap(t *testing.T) {
	lines := []lyrics.PreparedLine{
		timedLine("first", 0, 2),
		timedLine("second", 8, 10),
	}
	tracker := NewTracker(&CommandRecorder{}, lines)

	if got, _ := tracker.Tick(1); got != "first" {
		t.Fatalf("Tick(1) = %q, want first", got)
	}
	// 2.5+ sits past first's grace window and before second's start
	if got, _ := tracker.Tick(4); got != "first" {
		t.Errorf("Tick(4) = %q, want retained first", got)
	}
	if got, _ := tracker.Tick(8.5); got != "second" {
		t.Errorf("Tick(8.5) = %q, want second", got)
	}
}

func TestTrackerEndGrace(t *testing.T) {
	tracker := NewTracker(&CommandRecorder{}, threeLines())

	// 5.2 is within first's end grace but second's window starts at 5 and
	// scan order prefers the earlier line
	if got, _ := tracker.Tick(5.2); got != "first" {
		t.Errorf("Tick(5.2) = %q, want first during end grace", got)
	}
}

func TestTrackerUntimedTrailingDwell(t *testing.T) {
	tracker := NewTracker(&CommandRecorder{}, threeLines())

	if got, _ := tracker.Tick(12); got != "last" {
		t.Errorf("Tick(12) = %q, want last", got)
	}
	// Past the fallback dwell the line is retained rather than dropped
	if got, _ := tracker.Tick(10 + DefaultFallbackDwell + 1); got != "last" {
		t.Errorf("Tick past dwell = %q, want retained last", got)
	}
}

func TestTrackerStopPointPausesPlayback(t *testing.T) {
	recorder := &CommandRecorder{}
	tracker := NewTracker(recorder, threeLines())

	if err := tracker.PreviewLine(0); err != nil {
		t.Fatalf("PreviewLine() error = %v", err)
	}

	commands := recorder.Drain()
	if len(commands) != 2 || commands[0].Action != "seek" || commands[1].Action != "play" {
		t.Fatalf("preview commands = %+v, want seek then play", commands)
	}
	if commands[0].Position != 0 {
		t.Errorf("seek position = %v, want 0", commands[0].Position)
	}

	// Stop point is endTime 5 + 0.45 grace, but clamped below the next
	// line's start minus margin: 4.95
	if _, paused := tracker.Tick(4.9); paused {
		t.Error("paused before the stop point")
	}
	_, paused := tracker.Tick(4.96)
	if !paused {
		t.Fatal("did not pause at the stop point")
	}
	if commands := recorder.Drain(); len(commands) != 1 || commands[0].Action != "pause" {
		t.Errorf("commands after stop = %+v, want a single pause", commands)
	}

	// The stop point is consumed; later ticks do not pause again
	if _, paused := tracker.Tick(6); paused {
		t.Error("stop point fired twice")
	}
}

func TestTrackerStopClearsArmedStopPoint(t *testing.T) {
	recorder := &CommandRecorder{}
	tracker := NewTracker(recorder, threeLines())

	if err := tracker.PreviewLine(1); err != nil {
		t.Fatalf("PreviewLine() error = %v", err)
	}
	recorder.Drain()
	tracker.Stop()

	if _, paused := tracker.Tick(100); paused {
		t.Error("cleared stop point still paused playback")
	}
}

func TestTrackerPreviewStopGap(t *testing.T) {
	// A line whose end time equals its start still previews for minStopGap
	start := 3.0
	end := 3.0
	lines := []lyrics.PreparedLine{
		{Line: models.LyricLine{ID: "tight", Text: "tight", StartTime: &start, EndTime: &end}},
		openLine("next", 3.1),
	}
	recorder := &CommandRecorder{}
	tracker := NewTracker(recorder, lines)

	if err := tracker.PreviewLine(0); err != nil {
		t.Fatalf("PreviewLine() error = %v", err)
	}

	// Next-line clamp would put the stop at 3.05; the minimum gap pushes it
	// to 3.2
	if _, paused := tracker.Tick(3.1); paused {
		t.Error("paused before the minimum preview gap")
	}
	if _, paused := tracker.Tick(3.2); !paused {
		t.Error("did not pause after the minimum preview gap")
	}
}

func TestTrackerEmptyLines(t *testing.T) {
	tracker := NewTracker(&CommandRecorder{}, nil)

	if id, paused := tracker.Tick(5); id != "" || paused {
		t.Errorf("Tick on empty tracker = %q/%v, want \"\"/false", id, paused)
	}
	if err := tracker.PreviewLine(0); err == nil {
		t.Error("PreviewLine on empty tracker did not error")
	}
}
