package coaching

const (
	PaceTooSlow = "Consider speaking slightly faster to maintain audience engagement"
	PaceTooFast = "Try to slow down your speaking pace for better comprehension"
	PaceGood    = "Excellent speaking pace - very natural and easy to follow"

	FillersHigh     = "Focus on reducing filler words like 'um' and 'uh' through practice"
	FillersModerate = "Good control of filler words - try to reduce them slightly"
	FillersLow      = "Great job minimizing filler words!"

	PausesTooFew  = "Consider adding more strategic pauses for emphasis"
	PausesTooMany = "Try to reduce excessive pausing to maintain flow"
	PausesGood    = "Good use of pauses for natural speech rhythm"

	EyeContactTip = "Maintain consistent eye contact with the camera"
	GestureTip    = "Use hand gestures to complement your facial expressions"
)

const (
	slowPaceWPM = 120
	fastPaceWPM = 180

	highFillerCount     = 20
	moderateFillerCount = 10

	lowPausePercentage  = 8
	highPausePercentage = 15

	highSmileScore   = 0.7
	mediumSmileScore = 0.5
)

func PaceRecommendation(wpm int) string {
	switch {
	case wpm < slowPaceWPM:
		return PaceTooSlow
	case wpm > fastPaceWPM:
		return PaceTooFast
	default:
		return PaceGood
	}
}

func FillerRecommendation(totalFillers int) string {
	switch {
	case totalFillers > highFillerCount:
		return FillersHigh
	case totalFillers > moderateFillerCount:
		return FillersModerate
	default:
		return FillersLow
	}
}

func PauseRecommendation(pausePercentage float64) string {
	switch {
	case pausePercentage < lowPausePercentage:
		return PausesTooFew
	case pausePercentage > highPausePercentage:
		return PausesTooMany
	default:
		return PausesGood
	}
}

// TranscriptRecommendations returns exactly one pace, one filler and one
// pause suggestion, in that order.
func TranscriptRecommendations(wpm int, fillers map[string]int, pausePercentage float64) []string {
	total := 0
	for _, n := range fillers {
		total += n
	}
	return []string{
		PaceRecommendation(wpm),
		FillerRecommendation(total),
		PauseRecommendation(pausePercentage),
	}
}

func VideoRecommendations(smileScore float64) []string {
	var recs []string
	switch {
	case smileScore > highSmileScore:
		recs = append(recs,
			"Excellent engagement levels! Your positive energy is contagious",
			"Great use of facial expressions throughout the presentation",
		)
	case smileScore > mediumSmileScore:
		recs = append(recs,
			"Good baseline engagement detected",
			"Consider adding more animated expressions during key points",
		)
	default:
		recs = append(recs,
			"Try to incorporate more smiles and positive expressions",
			"Practice in front of a mirror to improve facial engagement",
		)
	}
	return append(recs, EyeContactTip, GestureTip)
}

// EngagementLevel classifies a smile score with the same thresholds used for
// the video recommendations.
func EngagementLevel(smileScore float64) string {
	switch {
	case smileScore > highSmileScore:
		return EngagementHigh
	case smileScore > mediumSmileScore:
		return EngagementMedium
	default:
		return EngagementLow
	}
}
