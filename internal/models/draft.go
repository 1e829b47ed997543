package models

import "time"

// PracticeKindLyric keys lyric practice drafts in both storage tiers
const PracticeKindLyric = "lyric"

// AttemptDraft is the mutable, per-learner, per-assignment working state.
// Answers are index-aligned to each line's hidden-word positions.
type AttemptDraft struct {
	Answers              map[string][]string `json:"answers"`
	Mode                 string              `json:"mode"`
	ReadModeSwitchesUsed int                 `json:"readModeSwitchesUsed"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// NewAttemptDraft creates an empty draft in the given starting mode
func NewAttemptDraft(mode string) *AttemptDraft {
	return &AttemptDraft{
		Answers: make(map[string][]string),
		Mode:    mode,
	}
}

// Clone returns a deep copy so persistence never observes a torn draft
func (d *AttemptDraft) Clone() *AttemptDraft {
	if d == nil {
		return nil
	}
	copied := &AttemptDraft{
		Answers:              make(map[string][]string, len(d.Answers)),
		Mode:                 d.Mode,
		ReadModeSwitchesUsed: d.ReadModeSwitchesUsed,
		UpdatedAt:            d.UpdatedAt,
	}
	for lineID, answers := range d.Answers {
		copied.Answers[lineID] = append([]string(nil), answers...)
	}
	return copied
}

// SetAnswer records a submitted string for one blank, growing the slice as needed
func (d *AttemptDraft) SetAnswer(lineID string, answerIndex int, value string) {
	if answerIndex < 0 {
		return
	}
	answers := d.Answers[lineID]
	for len(answers) <= answerIndex {
		answers = append(answers, "")
	}
	answers[answerIndex] = value
	d.Answers[lineID] = answers
}
