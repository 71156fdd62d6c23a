package coaching

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	averageWordsPerMinute = 150
	minDurationMinutes    = 0.5
)

// FillerTerms lists the filler vocabulary in reporting order.
var FillerTerms = []string{"um", "uh", "like", "you know"}

var fillerPatterns = map[string]*regexp.Regexp{
	"um":       regexp.MustCompile(`(?i)\bum\b`),
	"uh":       regexp.MustCompile(`(?i)\buh\b`),
	"like":     regexp.MustCompile(`(?i)\blike\b`),
	"you know": regexp.MustCompile(`(?i)\byou know\b`),
}

type TranscriptMetrics struct {
	TotalWords      int
	DurationMinutes float64
	WordsPerMinute  int
	FillerWords     map[string]int
	// FromCues is set when the duration was read from WebVTT cue timings.
	FromCues bool
}

func (m TranscriptMetrics) TotalFillers() int {
	total := 0
	for _, n := range m.FillerWords {
		total += n
	}
	return total
}

// RoundedDuration is the duration in minutes rounded to one decimal place.
func (m TranscriptMetrics) RoundedDuration() float64 {
	return roundTenth(m.DurationMinutes)
}

// ExtractMetrics counts words and filler terms in a transcript and estimates
// its speaking pace. Callers reject blank transcripts before calling.
func ExtractMetrics(transcript string) TranscriptMetrics {
	text := norm.NFC.String(transcript)

	var duration float64
	fromCues := false
	if IsWebVTT(text) {
		// A caption file with no spoken lines is counted as plain text.
		if plain, seconds := StripWebVTT(text); len(strings.Fields(plain)) > 0 {
			text = plain
			duration = seconds / 60
			fromCues = true
		}
	}

	wordCount := len(strings.Fields(text))
	if !fromCues {
		duration = float64(wordCount) / averageWordsPerMinute
	}

	wpm := int(math.Round(float64(wordCount) / math.Max(duration, minDurationMinutes)))

	fillers := make(map[string]int, len(FillerTerms))
	for _, term := range FillerTerms {
		fillers[term] = len(fillerPatterns[term].FindAllStringIndex(text, -1))
	}

	return TranscriptMetrics{
		TotalWords:      wordCount,
		DurationMinutes: duration,
		WordsPerMinute:  wpm,
		FillerWords:     fillers,
		FromCues:        fromCues,
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
