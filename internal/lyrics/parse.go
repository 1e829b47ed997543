package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"lyricclash/internal/models"
)

// timestampPattern matches bracketed [mm:ss], [mm:ss.f], [mm:ss.ff] and
// [mm:ss.fff] tags. Several tags may prefix one text line.
var timestampPattern = regexp.MustCompile(`\[(\d{1,3}):(\d{2})(?:\.(\d{1,3}))?\]`)

// metadataPattern matches header tags like [ti:...], [ar:...] which carry no
// lyric text and are ignored entirely.
var metadataPattern = regexp.MustCompile(`^\s*\[(ti|ar|al|by|offset)\s*:`)

// ParseResult is the output of parsing a timestamp transcript file
type ParseResult struct {
	// Lines holds the timed lyric lines sorted by start time. Empty when the
	// file carried no usable timing information; callers fall back to plain
	// transcript mode in that case.
	Lines []models.LyricLine

	// Transcript is the reconstructed plain text in first-seen order, tag-free.
	// Used to pre-fill the raw-text editing surface.
	Transcript string
}

type timedEntry struct {
	start float64
	text  string
}

// ParseTimestamps converts a line-oriented timestamp lyric format into ordered,
// timed lyric lines. A text line with several timestamp tags yields one entry
// per tag, all sharing the same text, because some authoring tools emit
// repeated lines at multiple timecodes. Lines without tags contribute only to
// the reconstructed transcript.
func ParseTimestamps(raw string) ParseResult {
	var entries []timedEntry
	var transcript []string

	for _, line := range strings.Split(raw, "\n") {
		if metadataPattern.MatchString(line) {
			continue
		}

		tags := timestampPattern.FindAllStringSubmatch(line, -1)
		text := strings.TrimSpace(timestampPattern.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}

		transcript = append(transcript, text)

		for _, tag := range tags {
			entries = append(entries, timedEntry{start: tagToSeconds(tag), text: text})
		}
	}

	// Stable keeps first-seen order for entries sharing a timestamp
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].start < entries[j].start
	})

	lines := make([]models.LyricLine, 0, len(entries))
	for i, entry := range entries {
		start := entry.start
		line := models.LyricLine{
			ID:        uuid.NewString(),
			Text:      entry.text,
			StartTime: &start,
		}
		if i+1 < len(entries) {
			end := entries[i+1].start
			line.EndTime = &end
		}
		lines = append(lines, line)
	}

	return ParseResult{
		Lines:      lines,
		Transcript: strings.Join(transcript, "\n"),
	}
}

// tagToSeconds converts a matched [mm:ss.fraction] tag to seconds, with the
// fraction normalized to milliseconds regardless of digit count.
func tagToSeconds(tag []string) float64 {
	minutes, _ := strconv.Atoi(tag[1])
	seconds, _ := strconv.Atoi(tag[2])

	millis := 0
	if tag[3] != "" {
		frac, _ := strconv.Atoi(tag[3])
		switch len(tag[3]) {
		case 1:
			millis = frac * 100
		case 2:
			millis = frac * 10
		default:
			millis = frac
		}
	}

	return float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}
