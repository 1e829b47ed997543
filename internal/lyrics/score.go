package lyrics

import (
	"math"

	"github.com/antzucaro/matchr"
)

// BlankResult records the grading of a single blank
type BlankResult struct {
	LineID      string `json:"lineId"`
	AnswerIndex int    `json:"answerIndex"`
	Expected    string `json:"expected"`
	Submitted   string `json:"submitted"`
	Correct     bool   `json:"correct"`
	// Close flags a near miss (small edit distance on the normalized forms).
	// Feedback only; a close answer still scores zero.
	Close bool `json:"close"`
}

// Score is the outcome of grading an answer set against prepared lines
type Score struct {
	ScorePercent float64       `json:"scorePercent"`
	Correct      int           `json:"correct"`
	Total        int           `json:"total"`
	Blanks       []BlankResult `json:"blanks"`
}

// closeDistance is the maximum Levenshtein distance still reported as a near miss
const closeDistance = 2

// ScoreAnswers grades every hidden word of every prepared line against the
// submitted answers. Comparison happens on normalized forms, so case,
// punctuation and diacritics never cost points. Missing submissions count
// toward the total but never toward correct. A lesson with no hidden words
// scores 100.
func ScoreAnswers(prepared []PreparedLine, answers map[string][]string) Score {
	score := Score{}

	for _, line := range prepared {
		submitted := answers[line.Line.ID]
		for i, expected := range line.HiddenWords {
			blank := BlankResult{
				LineID:      line.Line.ID,
				AnswerIndex: i,
				Expected:    expected,
			}
			if i < len(submitted) {
				blank.Submitted = submitted[i]
			}

			wantNorm := NormalizeWord(expected)
			gotNorm := NormalizeWord(blank.Submitted)
			blank.Correct = gotNorm == wantNorm

			if blank.Correct {
				score.Correct++
			} else if gotNorm != "" {
				if d := matchr.Levenshtein(gotNorm, wantNorm); d <= closeDistance {
					blank.Close = true
				}
			}

			score.Total++
			score.Blanks = append(score.Blanks, blank)
		}
	}

	score.ScorePercent = roundPercent(score.Correct, score.Total)
	return score
}

// roundPercent computes correct/total as a percentage with exactly one
// decimal place. Zero blanks grade as a perfect score.
func roundPercent(correct, total int) float64 {
	if total == 0 {
		return 100
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}
