package lyrics

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenizeLinePreservesText(t *testing.T) {
	tests := []string{
		"the cat sat on the mat",
		"Hello, darkness — my old friend!",
		"  leading and trailing  ",
		"Don't stop believin'",
		"",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			tokens := TokenizeLine(text)
			var b strings.Builder
			for _, tok := range tokens {
				b.WriteString(tok.Value)
			}
			if b.String() != text {
				t.Errorf("tokens concatenate to %q, want %q", b.String(), text)
			}
		})
	}
}

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "hello"},
		{"Don't", "dont"},
		{"café", "cafe"},
		{"naïve", "naive"},
		{"it's!", "its"},
		{"---", ""},
		{"ABC123", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeWord(tt.in); got != tt.want {
				t.Errorf("NormalizeWord(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func hiddenValues(tokens []Token) []string {
	var hidden []string
	for _, tok := range tokens {
		if tok.Hidden {
			hidden = append(hidden, tok.Value)
		}
	}
	return hidden
}

func TestSelectBlanksDeterministic(t *testing.T) {
	text := "Because a vision softly creeping left its seeds while I was sleeping"

	first := SelectBlanks(text, nil, 0.5)
	second := SelectBlanks(text, nil, 0.5)

	if !reflect.DeepEqual(hiddenValues(first), hiddenValues(second)) {
		t.Errorf("selection not deterministic: %v vs %v", hiddenValues(first), hiddenValues(second))
	}
}

func TestSelectBlanksExplicitRepeatedWord(t *testing.T) {
	tokens := SelectBlanks("the cat sat on the mat", []string{"the", "the"}, 0.5)

	var hiddenIdx []int
	for i, tok := range tokens {
		if tok.Hidden {
			hiddenIdx = append(hiddenIdx, i)
		}
	}

	// Word tokens sit at even positions: the(0) cat(2) sat(4) on(6) the(8) mat(10).
	// Both occurrences of "the" must be hidden, not the first one twice.
	if len(hiddenIdx) != 2 {
		t.Fatalf("hidden %d tokens, want 2: %v", len(hiddenIdx), hiddenIdx)
	}
	if tokens[hiddenIdx[0]].Value != "the" || tokens[hiddenIdx[1]].Value != "the" {
		t.Errorf("hidden tokens = %q, %q, want both %q", tokens[hiddenIdx[0]].Value, tokens[hiddenIdx[1]].Value, "the")
	}
	if hiddenIdx[0] == hiddenIdx[1] {
		t.Errorf("same occurrence hidden twice at %d", hiddenIdx[0])
	}
	if hiddenIdx[1] <= hiddenIdx[0] {
		t.Errorf("occurrences out of order: %v", hiddenIdx)
	}
}

func TestSelectBlanksExplicitUnmatchedTargetsSkipped(t *testing.T) {
	tokens := SelectBlanks("the cat sat", []string{"the", "zebra"}, 0.5)

	hidden := hiddenValues(tokens)
	if len(hidden) != 1 || hidden[0] != "the" {
		t.Errorf("hidden = %v, want just [the]", hidden)
	}
}

func TestSelectBlanksAutomaticCount(t *testing.T) {
	// Ten eligible words of strictly decreasing length
	text := "abcdefghijklm abcdefghijkl abcdefghijk abcdefghij abcdefghi abcdefgh abcdefg abcdef abcde abcd"

	tokens := SelectBlanks(text, nil, 0.3)

	hidden := hiddenValues(tokens)
	if len(hidden) != 3 {
		t.Fatalf("hidden %d words, want 3: %v", len(hidden), hidden)
	}
	want := []string{"abcdefghijklm", "abcdefghijkl", "abcdefghijk"}
	if !reflect.DeepEqual(hidden, want) {
		t.Errorf("hidden = %v, want the three longest %v", hidden, want)
	}
}

func TestSelectBlanksAutomaticTiesKeepLeftToRightOrder(t *testing.T) {
	tokens := SelectBlanks("alpha bravo charli delta", nil, 0.5)

	hidden := hiddenValues(tokens)
	// All words normalize to length 5 or 6; "charli" is 6, rest are 5.
	// Two picks: charli first by length, then the leftmost five-letter word.
	want := []string{"alpha", "charli"}
	if !reflect.DeepEqual(hidden, want) {
		t.Errorf("hidden = %v, want %v", hidden, want)
	}
}

func TestSelectBlanksEligibility(t *testing.T) {
	// "my" falls under the length floor and is never hidden; "old" sits
	// exactly on it and is eligible
	tokens := SelectBlanks("Hello darkness my old friend", nil, 1.0)

	hidden := hiddenValues(tokens)
	want := []string{"Hello", "darkness", "old", "friend"}
	if !reflect.DeepEqual(hidden, want) {
		t.Errorf("hidden = %v, want %v", hidden, want)
	}
}

func TestSelectBlanksThreeLetterWords(t *testing.T) {
	// A line made entirely of three-letter words still gets blanks
	tokens := SelectBlanks("the cat sat on the mat", nil, 0.5)

	hidden := hiddenValues(tokens)
	// Five eligible words all normalize to length 3 ("on" is under the
	// floor); ties keep left-to-right order.
	want := []string{"the", "cat", "sat"}
	if !reflect.DeepEqual(hidden, want) {
		t.Errorf("hidden = %v, want %v", hidden, want)
	}
}

func TestSelectBlanksAtLeastOne(t *testing.T) {
	tokens := SelectBlanks("Hello darkness my old friend", nil, 0.01)

	hidden := hiddenValues(tokens)
	if len(hidden) != 1 {
		t.Fatalf("hidden %d words, want 1: %v", len(hidden), hidden)
	}
	if hidden[0] != "darkness" {
		t.Errorf("hidden = %q, want the longest word %q", hidden[0], "darkness")
	}
}

func TestSelectBlanksAnswerIndexesDense(t *testing.T) {
	tokens := SelectBlanks("one potato two potato three potato four", nil, 0.8)

	next := 0
	for _, tok := range tokens {
		if tok.Hidden {
			if tok.AnswerIndex == nil {
				t.Fatal("hidden token missing answer index")
			}
			if *tok.AnswerIndex != next {
				t.Errorf("answer index = %d, want %d", *tok.AnswerIndex, next)
			}
			next++
		} else if tok.AnswerIndex != nil {
			t.Errorf("visible token %q carries answer index %d", tok.Value, *tok.AnswerIndex)
		}
	}
	if next == 0 {
		t.Fatal("no tokens hidden")
	}
}

func TestSelectBlanksNoEligibleWords(t *testing.T) {
	tokens := SelectBlanks("a an of it", nil, 1.0)

	if hidden := hiddenValues(tokens); hidden != nil {
		t.Errorf("hidden = %v, want none for a line of short words", hidden)
	}
}

func TestSelectBlanksExplicitTargetUnderFloor(t *testing.T) {
	// An explicit target below the eligibility floor never matches, so the
	// selection falls through to automatic mode
	tokens := SelectBlanks("Hello darkness my old friend", []string{"my"}, 0.01)

	hidden := hiddenValues(tokens)
	if len(hidden) != 1 || hidden[0] != "darkness" {
		t.Errorf("hidden = %v, want automatic fallback to [darkness]", hidden)
	}
}
