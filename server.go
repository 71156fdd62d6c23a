package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"presentcoachdev/coaching"
	"presentcoachdev/config"
	"presentcoachdev/logger"
	"presentcoachdev/modelapi/deepgramapi"
	"presentcoachdev/modelapi/functionapi"
	"presentcoachdev/modelapi/geminiapi"
	"presentcoachdev/modelapi/openaiapi"
	"presentcoachdev/routes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperdxio/opentelemetry-logs-go/exporters/otlp/otlplogs"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"github.com/hyperdxio/otel-config-go/otelconfig"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:           "presentcoach",
		Short:         "Presentation coaching API with mock-analysis fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	rootCmd.AddCommand(serveCmd(), analyzeTranscriptCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		return fmt.Errorf("error setting up OTel SDK: %w", err)
	}
	defer otelShutdown()

	logExporter, _ := otlplogs.NewExporter(ctx)
	loggerProvider := sdk.NewLoggerProvider(sdk.WithBatcher(logExporter))
	defer loggerProvider.Shutdown(context.Background())

	LogMiddleware := logger.Connect(logger.LoggerConnectProps{Production: cfg.Production, LoggerProvider: loggerProvider})
	defer LogMiddleware.Sync()

	functions := functionapi.Connect(ctx, functionapi.FunctionAPIConnectProps{Logger: LogMiddleware, Config: cfg.Functions})

	chat, err := connectChat(ctx, cfg, LogMiddleware)
	if err != nil {
		return err
	}

	props := routes.RouterConnectProps{
		Logger:    LogMiddleware,
		Config:    cfg,
		Functions: functions,
		Generator: coaching.NewClockGenerator(),
		Chat:      chat,
	}
	if cfg.Deepgram.Enabled() {
		props.Transcriber = deepgramapi.Connect(LogMiddleware, cfg.Deepgram.APIKey)
	}
	router := routes.Connect(ctx, props)

	Logger := LogMiddleware.Logger(ctx)
	startFields := []zap.Field{
		zap.String("port", cfg.Port),
		zap.Bool("video_function", functions.VideoConfigured()),
		zap.Bool("transcript_function", functions.TranscriptConfigured()),
		zap.Bool("transcriber", props.Transcriber != nil),
	}
	if cfg.Production {
		Logger.Info("[Server] Starting in production mode", startFields...)
	} else {
		Logger.Info("[Server] Starting in development mode", startFields...)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	Logger.Info("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func connectChat(ctx context.Context, cfg *config.Config, LogMiddleware *logger.LogMiddleware) (routes.ChatCompleter, error) {
	switch cfg.Chat.Provider {
	case config.ChatProviderGemini:
		return geminiapi.Connect(ctx, geminiapi.GeminiConnectProps{
			Logger: LogMiddleware,
			APIKey: cfg.Chat.GeminiAPIKey,
			Model:  cfg.Chat.GeminiModel,
		})
	default:
		return openaiapi.Connect(ctx, openaiapi.OpenAIConnectProps{
			Logger:  LogMiddleware,
			APIKey:  cfg.Chat.OpenAIAPIKey,
			BaseURL: cfg.Chat.OpenAIBaseURL,
			Model:   cfg.Chat.OpenAIModel,
		}), nil
	}
}
