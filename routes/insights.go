package routes

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type insightsVideoRequest struct {
	VideoURL string `json:"video_url"`
}

type insightsTranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// handleVideoInsights relays to the insights video function without any mock
// fallback.
func (rt *Router) handleVideoInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req insightsVideoRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, apiError{Error: "Invalid JSON body"})
		return
	}
	videoURL := strings.TrimSpace(req.VideoURL)
	if videoURL == "" {
		respondJSON(w, http.StatusBadRequest, apiError{Error: "Video URL is required"})
		return
	}

	body, err := rt.functions.VideoInsights(ctx, videoURL)
	if err != nil {
		rt.logger.Logger(ctx).Error("[Router] Insights video analysis failed",
			zap.Error(err),
			zap.String("video_url", videoURL),
		)
		respondJSON(w, http.StatusInternalServerError, apiError{Error: "Analysis failed", Message: err.Error()})
		return
	}
	respondRaw(w, http.StatusOK, body)
}

func (rt *Router) handleTranscriptInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req insightsTranscriptRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, apiError{Error: "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		respondJSON(w, http.StatusBadRequest, apiError{Error: "Transcript is required"})
		return
	}

	body, err := rt.functions.TranscriptInsights(ctx, req.Transcript)
	if err != nil {
		rt.logger.Logger(ctx).Error("[Router] Insights transcript analysis failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, apiError{Error: "Transcript analysis failed", Message: err.Error()})
		return
	}
	respondRaw(w, http.StatusOK, body)
}
