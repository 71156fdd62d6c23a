package coaching

import (
	"strconv"
	"strings"
)

const minCueSeconds = 0.1

// IsWebVTT reports whether the text carries at least one cue timing line
// ("<timestamp> --> <timestamp>"). A WEBVTT header or a stray arrow in prose
// is not enough.
func IsWebVTT(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if _, _, ok := parseCueTiming(line); ok {
			return true
		}
	}
	return false
}

// StripWebVTT drops the header, cue identifiers and timing lines and returns
// the spoken text with the span from the first cue start to the last cue end.
// Lines that only look like caption syntax are kept as text.
func StripWebVTT(text string) (string, float64) {
	rawLines := strings.Split(strings.TrimPrefix(text, "\ufeff"), "\n")
	trimmed := make([]string, len(rawLines))
	for i, line := range rawLines {
		trimmed[i] = strings.TrimSpace(line)
	}

	var lines []string
	var start, end float64
	seenCue := false
	seenContent := false

	for i, line := range trimmed {
		if line == "" {
			continue
		}
		first := !seenContent
		seenContent = true

		if first && isHeader(line) {
			continue
		}
		if s, e, ok := parseCueTiming(line); ok {
			if !seenCue {
				start = s
				seenCue = true
			}
			end = e
			continue
		}
		if isDigits(line) && nextIsCueTiming(trimmed[i+1:]) {
			continue
		}
		lines = append(lines, line)
	}

	duration := end - start
	if duration < minCueSeconds {
		duration = minCueSeconds
	}
	return strings.Join(lines, "\n"), duration
}

func isHeader(line string) bool {
	rest, ok := strings.CutPrefix(line, "WEBVTT")
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t')
}

// nextIsCueTiming reports whether the next non-empty line is a timing line.
func nextIsCueTiming(lines []string) bool {
	for _, line := range lines {
		if line == "" {
			continue
		}
		_, _, ok := parseCueTiming(line)
		return ok
	}
	return false
}

func parseCueTiming(line string) (float64, float64, bool) {
	from, to, found := strings.Cut(line, "-->")
	if !found {
		return 0, 0, false
	}
	start, ok := parseTimestamp(from)
	if !ok {
		return 0, 0, false
	}
	end, ok := parseTimestamp(to)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

// parseTimestamp reads "hh:mm:ss.mmm" or "mm:ss.mmm", ignoring trailing cue
// settings. A comma decimal separator (SRT style) is accepted.
func parseTimestamp(raw string) (float64, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, false
	}
	parts := strings.Split(strings.ReplaceAll(fields[0], ",", "."), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	seconds := 0.0
	for i, p := range parts {
		if !isTimestampPart(p) {
			return 0, false
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		if i < len(parts)-1 {
			seconds = (seconds + v) * 60
		} else {
			seconds += v
		}
	}
	return seconds, true
}

// isTimestampPart accepts digits with at most one decimal point.
func isTimestampPart(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return false
		}
	}
	return dots <= 1 && s != "."
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
