package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"presentcoachdev/modelapi/functionapi"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sourceRemote = "remote"
	sourceMock   = "mock"
)

type videoRequest struct {
	VideoURL string `json:"videoUrl"`
}

type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

type combinedRequest struct {
	VideoURL   string `json:"videoUrl"`
	Transcript string `json:"transcript"`
}

type combinedResponse struct {
	Success            bool            `json:"success"`
	VideoAnalysis      json.RawMessage `json:"video_analysis,omitempty"`
	TranscriptAnalysis json.RawMessage `json:"transcript_analysis,omitempty"`
}

// analysis is the outcome of one attempt-then-fallback pipeline.
type analysis struct {
	body   json.RawMessage
	source string
}

func (rt *Router) handleAnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req videoRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "Invalid JSON body"})
		return
	}
	videoURL := strings.TrimSpace(req.VideoURL)
	if videoURL == "" {
		respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "Video URL is required"})
		return
	}

	rt.logger.Logger(ctx).Info("[Router] Analyzing video", zap.String("video_url", videoURL))

	result, err := rt.videoAnalysis(ctx, videoURL)
	if err != nil {
		rt.logger.Logger(ctx).Error("[Router] Video analysis failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "Internal server error during video analysis"})
		return
	}
	respondRaw(w, http.StatusOK, result.body)
}

func (rt *Router) handleAnalyzeTranscript(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req transcriptRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "Transcript text is required"})
		return
	}

	rt.logger.Logger(ctx).Info("[Router] Analyzing transcript", zap.Int("transcript.length", len(req.Transcript)))

	result, err := rt.transcriptAnalysis(ctx, req.Transcript)
	if err != nil {
		rt.logger.Logger(ctx).Error("[Router] Transcript analysis failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "Internal server error during transcript analysis"})
		return
	}
	respondRaw(w, http.StatusOK, result.body)
}

func (rt *Router) handleAnalyzeCombined(w http.ResponseWriter, r *http.Request) {
	tracer := otel.Tracer("routes/handleAnalyzeCombined")
	ctx, span := tracer.Start(r.Context(), "handleAnalyzeCombined")
	defer span.End()

	var req combinedRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "Invalid JSON body"})
		return
	}
	videoURL := strings.TrimSpace(req.VideoURL)
	transcript := req.Transcript
	if strings.TrimSpace(transcript) == "" {
		transcript = ""
	}
	if videoURL == "" && transcript == "" {
		respondJSON(w, http.StatusBadRequest, errorEnvelope{Error: "Either video URL or transcript is required"})
		return
	}

	span.SetAttributes(
		attribute.Bool("video", videoURL != ""),
		attribute.Bool("transcript", transcript != ""),
	)
	rt.logger.Logger(ctx).Info("[Router] Combined analysis",
		zap.Bool("video", videoURL != ""),
		zap.Bool("transcript", transcript != ""),
	)

	resp := combinedResponse{Success: true}
	g, gctx := errgroup.WithContext(ctx)

	if videoURL != "" {
		g.Go(func() error {
			result, err := rt.videoAnalysis(gctx, videoURL)
			if err != nil {
				return err
			}
			resp.VideoAnalysis = result.body
			return nil
		})
	}

	if transcript != "" || (videoURL != "" && rt.transcriber != nil) {
		g.Go(func() error {
			text := transcript
			if text == "" {
				var err error
				text, err = rt.transcriber.TranscribeURL(gctx, videoURL)
				if err != nil || strings.TrimSpace(text) == "" {
					rt.logger.Logger(gctx).Warn("[Router] Could not transcribe video, skipping transcript analysis",
						zap.Error(err),
						zap.String("video_url", videoURL),
					)
					return nil
				}
			}
			result, err := rt.transcriptAnalysis(gctx, text)
			if err != nil {
				return err
			}
			resp.TranscriptAnalysis = result.body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		rt.logger.Logger(ctx).Error("[Router] Combined analysis failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "Internal server error during combined analysis"})
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// videoAnalysis tries the video function once and substitutes mock data on
// any failure.
func (rt *Router) videoAnalysis(ctx context.Context, videoURL string) (analysis, error) {
	tracer := otel.Tracer("routes/videoAnalysis")
	ctx, span := tracer.Start(ctx, "videoAnalysis")
	defer span.End()

	body, err := rt.functions.AnalyzeVideo(ctx, videoURL)
	if err == nil {
		span.SetAttributes(attribute.String("analysis.source", sourceRemote))
		return analysis{body: body, source: sourceRemote}, nil
	}
	rt.logFallback(ctx, "video", err)

	mock, err := json.Marshal(rt.generator.VideoAnalysis(videoURL))
	if err != nil {
		span.RecordError(err)
		return analysis{}, fmt.Errorf("encode mock video analysis: %w", err)
	}
	span.SetAttributes(attribute.String("analysis.source", sourceMock))
	return analysis{body: mock, source: sourceMock}, nil
}

func (rt *Router) transcriptAnalysis(ctx context.Context, transcript string) (analysis, error) {
	tracer := otel.Tracer("routes/transcriptAnalysis")
	ctx, span := tracer.Start(ctx, "transcriptAnalysis")
	defer span.End()

	body, err := rt.functions.AnalyzeTranscript(ctx, transcript)
	if err == nil {
		span.SetAttributes(attribute.String("analysis.source", sourceRemote))
		return analysis{body: body, source: sourceRemote}, nil
	}
	rt.logFallback(ctx, "transcript", err)

	mock, err := json.Marshal(rt.generator.TranscriptAnalysis(transcript))
	if err != nil {
		span.RecordError(err)
		return analysis{}, fmt.Errorf("encode mock transcript analysis: %w", err)
	}
	span.SetAttributes(attribute.String("analysis.source", sourceMock))
	return analysis{body: mock, source: sourceMock}, nil
}

func (rt *Router) logFallback(ctx context.Context, kind string, err error) {
	if errors.Is(err, functionapi.ErrNotConfigured) {
		rt.logger.Logger(ctx).Info("[Router] No analysis function configured, using mock data",
			zap.String("analysis", kind))
		return
	}
	rt.logger.Logger(ctx).Warn("[Router] Analysis function failed, falling back to mock data",
		zap.String("analysis", kind),
		zap.Error(err),
	)
}
