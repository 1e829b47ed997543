package models

// LyricLine represents one authored line of a lesson transcript
type LyricLine struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	StartTime   *float64 `json:"startTime"`             // Seconds, nil when unspecified
	EndTime     *float64 `json:"endTime"`               // Seconds, nil when unspecified
	HiddenWords []string `json:"hiddenWords,omitempty"` // Explicit words to hide, overrides automatic selection
}

// HasTiming reports whether the line carries an explicit start time
func (l *LyricLine) HasTiming() bool {
	return l.StartTime != nil
}
