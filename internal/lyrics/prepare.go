package lyrics

import "lyricclash/internal/models"

// PreparedLine is the derived, read-only projection of a lyric line used at
// practice time.
type PreparedLine struct {
	Line        models.LyricLine `json:"line"`
	Tokens      []Token          `json:"tokens"`
	HiddenWords []string         `json:"hiddenWords"` // Literal hidden words ordered by answer index
}

// HiddenCount returns the number of blanks in the line
func (p *PreparedLine) HiddenCount() int {
	return len(p.HiddenWords)
}

// Prepare builds the prepared-line list for a whole lesson. It is recomputed
// from the current lines and settings on every use rather than cached, so the
// displayed blanks and the graded blanks can never drift apart.
func Prepare(lines []models.LyricLine, settings models.PracticeSettings) []PreparedLine {
	prepared := make([]PreparedLine, 0, len(lines))
	for _, line := range lines {
		tokens := SelectBlanks(line.Text, line.HiddenWords, settings.FillBlankDifficulty)

		var hidden []string
		for _, tok := range tokens {
			if tok.Hidden {
				hidden = append(hidden, tok.Value)
			}
		}

		prepared = append(prepared, PreparedLine{
			Line:        line,
			Tokens:      tokens,
			HiddenWords: hidden,
		})
	}
	return prepared
}
