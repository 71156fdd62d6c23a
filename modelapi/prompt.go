package modelapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Recommendation struct {
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
}

// ChatContext is the slice of a prior analysis payload that the coach prompt
// refers to. Missing or malformed fields hold their defaults.
type ChatContext struct {
	Archetype        string
	Stage            string
	EmotionalArc     string
	VisualEngagement float64
	Strengths        []string
	GrowthAreas      []string
	Recommendations  []Recommendation
}

// NewChatContext reads the coaching fields out of an analysis payload. A nil
// or unparsable payload yields the defaults.
func NewChatContext(insights json.RawMessage) ChatContext {
	coaching := field(insights, "coaching_insights")

	return ChatContext{
		Archetype:        stringOr(field(coaching, "speaker_archetype"), DEFAULT_ARCHETYPE),
		Stage:            stringOr(field(coaching, "development_stage"), DEFAULT_DEVELOPMENT_STAGE),
		EmotionalArc:     stringOr(field(insights, "visual_sentiment", "emotional_patterns", "emotional_arc"), DEFAULT_EMOTIONAL_ARC),
		VisualEngagement: numberOr(field(insights, "presentation_quality", "visual_engagement"), 0),
		Strengths:        stringList(field(coaching, "communication_strengths")),
		GrowthAreas:      stringList(field(coaching, "growth_opportunities")),
		Recommendations:  recommendations(field(insights, "recommendations")),
	}
}

func (c ChatContext) SystemPrompt() string {
	return fmt.Sprintf(COACH_SYSTEM_PROMPT,
		c.Archetype,
		c.Stage,
		c.EmotionalArc,
		strconv.FormatFloat(c.VisualEngagement, 'f', -1, 64),
		joinOr(c.Strengths, PENDING_LIST_PLACEHOLDER),
		joinOr(c.GrowthAreas, PENDING_LIST_PLACEHOLDER),
		c.numberedRecommendations(),
	)
}

func (c ChatContext) numberedRecommendations() string {
	recs := c.Recommendations
	if len(recs) > MAX_PROMPT_RECOMMENDATIONS {
		recs = recs[:MAX_PROMPT_RECOMMENDATIONS]
	}

	lines := make([]string, 0, len(recs))
	for i, r := range recs {
		if r.Category == "" {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, r.Suggestion))
			continue
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, r.Category, r.Suggestion))
	}
	return strings.Join(lines, "\n")
}

// field walks nested JSON objects and returns nil when any step is missing.
func field(raw json.RawMessage, path ...string) json.RawMessage {
	current := raw
	for _, key := range path {
		if len(current) == 0 {
			return nil
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			return nil
		}
		current = obj[key]
	}
	return current
}

func stringOr(raw json.RawMessage, fallback string) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == "" {
		return fallback
	}
	return s
}

func numberOr(raw json.RawMessage, fallback float64) float64 {
	var f float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil {
		return fallback
	}
	return f
}

func stringList(raw json.RawMessage) []string {
	var items []string
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	return items
}

// recommendations accepts both {category, suggestion} objects and the plain
// strings produced by the mock analysis.
func recommendations(raw json.RawMessage) []Recommendation {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	out := make([]Recommendation, 0, len(items))
	for _, item := range items {
		var text string
		if json.Unmarshal(item, &text) == nil {
			out = append(out, Recommendation{Suggestion: text})
			continue
		}
		var rec Recommendation
		if json.Unmarshal(item, &rec) == nil {
			out = append(out, rec)
		}
	}
	return out
}

func joinOr(items []string, fallback string) string {
	joined := strings.Join(items, ", ")
	if joined == "" {
		return fallback
	}
	return joined
}
