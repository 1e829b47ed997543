package playback

import (
	"errors"
	"sync"

	"lyricclash/internal/lyrics"
)

// Window tuning constants, in seconds
const (
	// endGrace keeps a line active slightly past its end time so the last
	// word is not cut off visually
	endGrace = 0.5

	// nextLineMargin backs a derived window end off the following line's
	// start so two lines never claim the same instant
	nextLineMargin = 0.05

	// DefaultFallbackDwell is how long an untimed trailing line stays
	// active. A display heuristic, kept configurable per tracker.
	DefaultFallbackDwell = 6.0

	// previewGrace extends a line-preview stop point past the line's end
	previewGrace = 0.45

	// minStopGap guarantees a preview plays for at least this long
	minStopGap = 0.2
)

// ErrNoLines is returned when a tracker is asked about an empty lesson
var ErrNoLines = errors.New("no lines to track")

type window struct {
	start float64
	end   float64
}

// Tracker determines which prepared line is active for a given playback
// position, and pauses playback at an armed stop point for line previews.
// It is driven by the host's polling tick while audio plays; it owns no
// timers, so pausing playback cancels tracking with nothing left running.
type Tracker struct {
	mu        sync.Mutex
	transport Transport
	lines     []lyrics.PreparedLine
	windows   []window
	activeIdx int
	stopPoint *float64

	// FallbackDwell is the window length granted to a trailing line with no
	// end time and no successor to infer one from.
	FallbackDwell float64
}

// NewTracker builds a tracker over the prepared lines in lesson order
func NewTracker(transport Transport, lines []lyrics.PreparedLine) *Tracker {
	t := &Tracker{
		transport:     transport,
		lines:         lines,
		activeIdx:     -1,
		FallbackDwell: DefaultFallbackDwell,
	}
	t.windows = t.computeWindows()
	return t
}

// computeWindows resolves the half-open [start, end) window of every line.
// A line without a start inherits the previous line's resolved end (or 0 for
// the first line); a line without an end borrows the next line's start minus
// a margin, or dwells for FallbackDwell seconds.
func (t *Tracker) computeWindows() []window {
	windows := make([]window, len(t.lines))
	prevEnd := 0.0

	for i, line := range t.lines {
		start := prevEnd
		if line.Line.StartTime != nil {
			start = *line.Line.StartTime
		} else if i == 0 {
			start = 0
		}

		var resolvedEnd, windowEnd float64
		switch {
		case line.Line.EndTime != nil:
			resolvedEnd = *line.Line.EndTime
			windowEnd = resolvedEnd + endGrace
		case i+1 < len(t.lines) && t.lines[i+1].Line.StartTime != nil:
			resolvedEnd = *t.lines[i+1].Line.StartTime - nextLineMargin
			windowEnd = resolvedEnd
		default:
			resolvedEnd = start + t.FallbackDwell
			windowEnd = resolvedEnd
		}

		windows[i] = window{start: start, end: windowEnd}
		prevEnd = resolvedEnd
	}

	return windows
}

// Tick advances the tracker to the given playback position. It returns the
// active line id and whether an armed stop point just paused playback.
// Positions in a gap retain the previously active line; with no previous
// line, positions before the first window clamp to the first line and
// anything else falls back to the last.
func (t *Tracker) Tick(position float64) (activeID string, paused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.lines) == 0 {
		return "", false
	}

	if t.stopPoint != nil && position >= *t.stopPoint {
		t.stopPoint = nil
		t.transport.Pause()
		paused = true
	}

	idx := -1
	for i, w := range t.windows {
		if position >= w.start && position < w.end {
			idx = i
			break
		}
	}

	if idx == -1 {
		switch {
		case t.activeIdx >= 0:
			idx = t.activeIdx
		case position < t.windows[0].start:
			idx = 0
		default:
			idx = len(t.lines) - 1
		}
	}

	t.activeIdx = idx
	return t.lines[idx].Line.ID, paused
}

// ActiveLineID returns the currently active line id, or "" while idle
func (t *Tracker) ActiveLineID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.activeIdx < 0 {
		return ""
	}
	return t.lines[t.activeIdx].Line.ID
}

// Stop clears any armed stop point. Called when playback pauses or ends so
// a stale stop point cannot pause a later play.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopPoint = nil
}

// PreviewLine seeks to the start of the given line, starts playback and arms
// a stop point just past the line's end, so the learner hears exactly this
// line. The stop point lands at least minStopGap after the seek position and
// never reaches into the next line.
func (t *Tracker) PreviewLine(index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.lines) {
		return ErrNoLines
	}
	line := t.lines[index].Line

	seek := t.transport.Position()
	if line.StartTime != nil {
		seek = *line.StartTime
	}

	var stop float64
	switch {
	case line.EndTime != nil:
		stop = *line.EndTime + previewGrace
	case index+1 < len(t.lines) && t.lines[index+1].Line.StartTime != nil:
		stop = *t.lines[index+1].Line.StartTime - nextLineMargin
	default:
		stop = seek + t.FallbackDwell
	}

	if index+1 < len(t.lines) && t.lines[index+1].Line.StartTime != nil {
		if limit := *t.lines[index+1].Line.StartTime - nextLineMargin; stop > limit {
			stop = limit
		}
	}
	if stop < seek+minStopGap {
		stop = seek + minStopGap
	}

	if err := t.transport.Seek(seek); err != nil {
		return err
	}
	if err := t.transport.Play(); err != nil {
		return err
	}

	t.stopPoint = &stop
	return nil
}
