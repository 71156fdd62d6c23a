package functionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"presentcoachdev/config"
	"presentcoachdev/httpmiddleware"
	"presentcoachdev/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const transcriptRoute = "/analyze_combined"

var (
	ErrNotConfigured = errors.New("analysis endpoint not configured")
	ErrInvalidBody   = errors.New("analysis endpoint returned a non-JSON body")
)

type FunctionAPIConnectProps struct {
	Logger *logger.LogMiddleware
	Config config.FunctionsConfig
	// Optional; tests inject httptest clients here.
	HTTPClient *http.Client
}

// FunctionAPI forwards analysis requests to the remote video and transcript
// functions. Each call is a single attempt.
type FunctionAPI struct {
	logger    *logger.LogMiddleware
	semaphore *semaphore.Weighted
	cfg       config.FunctionsConfig
	client    *http.Client
}

func Connect(ctx context.Context, args FunctionAPIConnectProps) *FunctionAPI {
	tracer := otel.Tracer("functionapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	maxWorkers := 10
	sem := semaphore.NewWeighted(int64(maxWorkers))

	span.SetAttributes(
		attribute.Int("maxWorkers", maxWorkers),
		attribute.Bool("video.configured", args.Config.VideoEndpoint != ""),
		attribute.Bool("transcript.configured", args.Config.TranscriptEndpoint != ""),
	)

	if args.Config.VideoEndpoint == "" {
		args.Logger.Logger(ctx).Info("[FunctionAPI] No video function endpoint configured - using mock data")
	}
	if args.Config.TranscriptEndpoint == "" {
		args.Logger.Logger(ctx).Info("[FunctionAPI] No transcript function endpoint configured - using mock data")
	}

	return &FunctionAPI{logger: args.Logger, semaphore: sem, cfg: args.Config, client: args.HTTPClient}
}

func (f *FunctionAPI) VideoConfigured() bool {
	return f.cfg.VideoEndpoint != ""
}

func (f *FunctionAPI) TranscriptConfigured() bool {
	return f.cfg.TranscriptEndpoint != ""
}

// AnalyzeVideo asks the video function for a face/engagement analysis.
func (f *FunctionAPI) AnalyzeVideo(ctx context.Context, videoURL string) (json.RawMessage, error) {
	payload := map[string]string{"video_url": videoURL}
	return f.post(ctx, "AnalyzeVideo", f.cfg.VideoEndpoint, payload, f.cfg.VideoTimeout)
}

// AnalyzeTranscript asks the transcript function's combined route for speech
// metrics and coaching.
func (f *FunctionAPI) AnalyzeTranscript(ctx context.Context, transcript string) (json.RawMessage, error) {
	endpoint := ""
	if f.cfg.TranscriptEndpoint != "" {
		endpoint = strings.TrimRight(f.cfg.TranscriptEndpoint, "/") + transcriptRoute
	}
	payload := map[string]string{"transcript": transcript}
	return f.post(ctx, "AnalyzeTranscript", endpoint, payload, f.cfg.TranscriptTimeout)
}

func (f *FunctionAPI) VideoInsights(ctx context.Context, videoURL string) (json.RawMessage, error) {
	payload := map[string]string{"video_url": videoURL}
	return f.post(ctx, "VideoInsights", f.cfg.InsightsVideoEndpoint, payload, f.cfg.VideoTimeout)
}

func (f *FunctionAPI) TranscriptInsights(ctx context.Context, transcript string) (json.RawMessage, error) {
	payload := struct {
		Text            string `json:"text"`
		IncludeCoaching bool   `json:"include_coaching"`
	}{Text: transcript, IncludeCoaching: true}
	return f.post(ctx, "TranscriptInsights", f.cfg.InsightsTranscriptEndpoint, payload, f.cfg.TranscriptTimeout)
}

func (f *FunctionAPI) post(ctx context.Context, op string, endpoint string, payload any, timeout time.Duration) (json.RawMessage, error) {
	tracer := otel.Tracer("functionapi/" + op)
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if endpoint == "" {
		return nil, ErrNotConfigured
	}

	span.SetAttributes(
		attribute.String("function.endpoint", endpoint),
		attribute.Int64("function.timeout_ms", timeout.Milliseconds()),
	)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("could not generate request body: %w", err)
	}

	if err := f.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer f.semaphore.Release(1)

	f.logger.Logger(ctx).Info("[FunctionAPI] Calling analysis function",
		zap.String("op", op),
		zap.String("endpoint", endpoint),
		zap.Duration("timeout", timeout),
	)

	respBody, err := httpmiddleware.HttpRequest(ctx, httpmiddleware.HttpRequestStruct{
		Method:  http.MethodPost,
		Url:     endpoint,
		Body:    bytes.NewReader(jsonData),
		Timeout: timeout,
		Client:  f.client,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !json.Valid(respBody) {
		span.RecordError(ErrInvalidBody)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidBody)
	}

	span.AddEvent("Function response received")
	f.logger.Logger(ctx).Info("[FunctionAPI] Analysis function response received",
		zap.String("op", op),
		zap.Int("response.bytes", len(respBody)),
	)
	return json.RawMessage(respBody), nil
}
