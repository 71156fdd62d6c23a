package coaching

import (
	"encoding/json"
	"strconv"
)

const (
	EngagementHigh         = "High"
	EngagementMedium       = "Medium"
	EngagementLow          = "Low"
	EngagementUndetermined = "Unable to determine"
)

// SmileScore marshals as a number, or as "N/A" when no face was scored.
type SmileScore struct {
	Value float64
	Valid bool
}

func (s SmileScore) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte(`"N/A"`), nil
	}
	return []byte(strconv.FormatFloat(s.Value, 'f', -1, 64)), nil
}

func (s *SmileScore) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		s.Value, s.Valid = 0, false
		return nil
	}
	s.Value, s.Valid = f, true
	return nil
}

type VideoInsights struct {
	EngagementLevel      string     `json:"engagement_level"`
	AverageSmileScore    SmileScore `json:"average_smile_score"`
	VideoQuality         string     `json:"video_quality"`
	PresenterAgeEstimate *int       `json:"presenter_age_estimate,omitempty"`
	Recommendations      []string   `json:"recommendations"`
}

type VideoAnalysisResult struct {
	Success            bool          `json:"success"`
	TotalFacesDetected int           `json:"total_faces_detected"`
	FramesAnalyzed     int           `json:"frames_analyzed"`
	Insights           VideoInsights `json:"insights"`
}

type SpeechPace struct {
	WordsPerMinute           int     `json:"words_per_minute"`
	TotalWords               int     `json:"total_words"`
	EstimatedDurationMinutes float64 `json:"estimated_duration_minutes"`
	PausePercentage          float64 `json:"pause_percentage"`
}

type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type TranscriptAnalysis struct {
	SpeechPace      SpeechPace     `json:"speech_pace"`
	FillerWords     map[string]int `json:"filler_words"`
	Sentiment       Sentiment      `json:"sentiment"`
	Recommendations []string       `json:"recommendations"`
}

type TranscriptAnalysisResult struct {
	Success  bool               `json:"success"`
	Analysis TranscriptAnalysis `json:"analysis"`
}
