package coaching

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const mockFramesAnalyzed = 10

var (
	// Substrings marking a video reference as animated or otherwise faceless.
	NonHumanMarkers = []string{"BigBuckBunny", "animated"}

	mockSmileScores = []float64{0.65, 0.78, 0.82, 0.59, 0.71}

	mockSentiments = []Sentiment{
		{Label: "positive", Score: 0.78},
		{Label: "neutral", Score: 0.65},
		{Label: "positive", Score: 0.82},
		{Label: "confident", Score: 0.71},
	}

	nonHumanRecommendations = []string{
		"No human faces detected - this appears to be animated content",
		"For presentation analysis, use videos with clear human faces",
		"Ensure good lighting and camera positioning for best results",
	}
)

// Generator synthesizes placeholder analysis payloads for when no real
// analysis backend answers. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// NewClockGenerator seeds from the wall clock; output is not reproducible.
func NewClockGenerator() *Generator {
	now := uint64(time.Now().UnixNano())
	return NewGenerator(rand.NewPCG(now, now>>17|1))
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

func (g *Generator) unitFloat() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func IsNonHumanVideo(videoURL string) bool {
	for _, marker := range NonHumanMarkers {
		if strings.Contains(videoURL, marker) {
			return true
		}
	}
	return false
}

func (g *Generator) VideoAnalysis(videoURL string) VideoAnalysisResult {
	if IsNonHumanVideo(videoURL) {
		return VideoAnalysisResult{
			Success:            true,
			TotalFacesDetected: 0,
			FramesAnalyzed:     mockFramesAnalyzed,
			Insights: VideoInsights{
				EngagementLevel:   EngagementUndetermined,
				AverageSmileScore: SmileScore{},
				VideoQuality:      "High",
				Recommendations:   append([]string(nil), nonHumanRecommendations...),
			},
		}
	}

	score := mockSmileScores[g.intN(len(mockSmileScores))]
	faces := g.intN(9) + 2
	age := g.intN(31) + 25

	return VideoAnalysisResult{
		Success:            true,
		TotalFacesDetected: faces,
		FramesAnalyzed:     mockFramesAnalyzed,
		Insights: VideoInsights{
			EngagementLevel:      EngagementLevel(score),
			AverageSmileScore:    SmileScore{Value: score, Valid: true},
			VideoQuality:         "High",
			PresenterAgeEstimate: &age,
			Recommendations:      VideoRecommendations(score),
		},
	}
}

func (g *Generator) TranscriptAnalysis(transcript string) TranscriptAnalysisResult {
	metrics := ExtractMetrics(transcript)

	pause := roundTenth(g.unitFloat()*15 + 5)
	sentiment := mockSentiments[g.intN(len(mockSentiments))]

	return TranscriptAnalysisResult{
		Success: true,
		Analysis: TranscriptAnalysis{
			SpeechPace: SpeechPace{
				WordsPerMinute:           metrics.WordsPerMinute,
				TotalWords:               metrics.TotalWords,
				EstimatedDurationMinutes: metrics.RoundedDuration(),
				PausePercentage:          pause,
			},
			FillerWords:     metrics.FillerWords,
			Sentiment:       sentiment,
			Recommendations: TranscriptRecommendations(metrics.WordsPerMinute, metrics.FillerWords, pause),
		},
	}
}
