package lyrics

import (
	"math"
	"regexp"
	"sort"
	"unicode"
)

// Token is one segment of a tokenized line. Tokens concatenate back to the
// exact original text.
type Token struct {
	Value  string `json:"value"`
	IsWord bool   `json:"isWord"`
	Hidden bool   `json:"hidden"`
	// AnswerIndex is the 0-based position of this token among the hidden
	// tokens of its line, nil when the token is not hidden.
	AnswerIndex *int `json:"answerIndex"`
}

// tokenPattern splits text into maximal runs of word characters (apostrophes
// stay inside words so "Don't" is one token), whitespace, or other symbols.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_']+|\s+|[^\p{L}\p{N}_'\s]+`)

// minEligibleLength is the normalized length below which a word is never
// hidden; one- and two-letter function words are trivial to guess from
// context.
const minEligibleLength = 3

// TokenizeLine splits a line into word and non-word tokens, preserving every
// character of the input.
func TokenizeLine(text string) []Token {
	parts := tokenPattern.FindAllString(text, -1)
	tokens := make([]Token, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, Token{Value: part, IsWord: isWord(part)})
	}
	return tokens
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// eligible reports whether a token qualifies for hiding
func eligible(tok Token) bool {
	return tok.IsWord && len([]rune(NormalizeWord(tok.Value))) >= minEligibleLength
}

// SelectBlanks tokenizes one line and deterministically marks the tokens to
// hide. When hiddenWords is non-empty each target is matched, in order,
// against the next unmarked eligible token with the same normalized form, so
// a repeated target matches repeated occurrences rather than the same token
// twice. When no explicit target matches, automatic selection hides the
// longest eligible words, round(eligibleCount*difficulty) of them but always
// at least one. Answer indices run dense 0..k-1 in token order.
func SelectBlanks(text string, hiddenWords []string, difficulty float64) []Token {
	tokens := TokenizeLine(text)

	marked := selectExplicit(tokens, hiddenWords)
	if !marked {
		selectAutomatic(tokens, difficulty)
	}

	assignAnswerIndexes(tokens)
	return tokens
}

// selectExplicit marks tokens named by the author's hidden-word list. Only
// eligible tokens can be targeted; unmatched targets are skipped, never
// substituted. Returns false when no target matched at all, in which case
// automatic selection takes over.
func selectExplicit(tokens []Token, hiddenWords []string) bool {
	if len(hiddenWords) == 0 {
		return false
	}

	matched := 0
	cursor := 0 // scan resumes after the previous match
	for _, target := range hiddenWords {
		want := NormalizeWord(target)
		if want == "" {
			continue
		}
		for i := cursor; i < len(tokens); i++ {
			if tokens[i].Hidden || !eligible(tokens[i]) {
				continue
			}
			if NormalizeWord(tokens[i].Value) == want {
				tokens[i].Hidden = true
				matched++
				cursor = i + 1
				break
			}
		}
	}

	return matched > 0
}

// selectAutomatic hides the eligible words with the greatest normalized
// length, ties broken by original left-to-right order.
func selectAutomatic(tokens []Token, difficulty float64) {
	var candidates []int
	for i, tok := range tokens {
		if eligible(tok) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}

	target := int(math.Round(float64(len(candidates)) * difficulty))
	if target < 1 {
		target = 1
	}
	if target > len(candidates) {
		target = len(candidates)
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		la := len([]rune(NormalizeWord(tokens[candidates[a]].Value)))
		lb := len([]rune(NormalizeWord(tokens[candidates[b]].Value)))
		return la > lb
	})

	for _, idx := range candidates[:target] {
		tokens[idx].Hidden = true
	}
}

// assignAnswerIndexes numbers hidden tokens by ascending original position
func assignAnswerIndexes(tokens []Token) {
	next := 0
	for i := range tokens {
		if tokens[i].Hidden {
			idx := next
			tokens[i].AnswerIndex = &idx
			next++
		}
	}
}
