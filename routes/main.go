package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"presentcoachdev/coaching"
	"presentcoachdev/config"
	"presentcoachdev/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const maxRequestBytes = 10 << 20

// AnalysisForwarder reaches the remote analysis functions. Implementations
// return functionapi.ErrNotConfigured when an endpoint is unset.
type AnalysisForwarder interface {
	AnalyzeVideo(ctx context.Context, videoURL string) (json.RawMessage, error)
	AnalyzeTranscript(ctx context.Context, transcript string) (json.RawMessage, error)
	VideoInsights(ctx context.Context, videoURL string) (json.RawMessage, error)
	TranscriptInsights(ctx context.Context, transcript string) (json.RawMessage, error)
}

type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt string, userMessage string) (string, error)
}

type Transcriber interface {
	TranscribeURL(ctx context.Context, mediaURL string) (string, error)
}

type RouterConnectProps struct {
	Logger    *logger.LogMiddleware
	Config    *config.Config
	Functions AnalysisForwarder
	Generator *coaching.Generator
	Chat      ChatCompleter
	// Optional; enables transcript analysis of video-only combined requests.
	Transcriber Transcriber
	// Optional; defaults to time.Now.
	Clock func() time.Time
}

type Router struct {
	logger      *logger.LogMiddleware
	cfg         *config.Config
	functions   AnalysisForwarder
	generator   *coaching.Generator
	chat        ChatCompleter
	transcriber Transcriber
	now         func() time.Time
	handler     http.Handler
}

func Connect(ctx context.Context, args RouterConnectProps) *Router {
	tracer := otel.Tracer("routes/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	rt := &Router{
		logger:      args.Logger,
		cfg:         args.Config,
		functions:   args.Functions,
		generator:   args.Generator,
		chat:        args.Chat,
		transcriber: args.Transcriber,
		now:         args.Clock,
	}
	if rt.now == nil {
		rt.now = time.Now
	}
	if rt.generator == nil {
		rt.generator = coaching.NewClockGenerator()
	}

	span.SetAttributes(
		attribute.Bool("static.enabled", args.Config.StaticDir != ""),
		attribute.Bool("transcriber.enabled", args.Transcriber != nil),
	)

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(requestLoggerMiddleware(rt.logger))
	r.Use(recoverMiddleware(rt.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: args.Config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", rt.handleHealth)

	r.Post("/analyze-video", rt.handleAnalyzeVideo)
	r.Post("/analyze-transcript", rt.handleAnalyzeTranscript)
	r.Post("/analyze-combined", rt.handleAnalyzeCombined)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", rt.handleVideoInsights)
		r.Post("/analyze-transcript", rt.handleTranscriptInsights)
		r.Post("/chat", rt.handleChat)
	})

	if dir := args.Config.StaticDir; dir != "" {
		r.Handle("/*", http.FileServer(http.Dir(dir)))
		rt.logger.Logger(ctx).Info("[Router] Serving static files")
	}

	rt.handler = otelhttp.NewHandler(r, "presentcoach")
	return rt
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}
