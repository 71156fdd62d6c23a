package openaiapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"presentcoachdev/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	maxTokens   = 500
	temperature = 0.7
)

var ErrEmptyCompletion = errors.New("no response received")

type OpenAI struct {
	logger    *logger.LogMiddleware
	semaphore *semaphore.Weighted
	client    *openai.Client
	model     string
}

type OpenAIConnectProps struct {
	Logger  *logger.LogMiddleware
	APIKey  string
	BaseURL string
	Model   string
	// Optional; tests point this at an httptest server.
	HTTPClient *http.Client
}

func Connect(ctx context.Context, args OpenAIConnectProps) *OpenAI {
	tracer := otel.Tracer("openaiapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	maxWorkers := 10
	sem := semaphore.NewWeighted(int64(maxWorkers))

	opts := []option.RequestOption{
		option.WithAPIKey(args.APIKey),
		option.WithMaxRetries(0),
	}
	if args.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(args.BaseURL))
	}
	if args.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(args.HTTPClient))
	}

	span.SetAttributes(
		attribute.Int("maxWorkers", maxWorkers),
		attribute.String("model", args.Model),
	)
	if args.APIKey == "" {
		args.Logger.Logger(ctx).Warn("[OpenAIAPI] OPENAI_API_KEY not set, chat requests will fail")
	}

	client := openai.NewClient(opts...)

	return &OpenAI{logger: args.Logger, semaphore: sem, client: &client, model: args.Model}
}

// Complete sends one system instruction and one user message and returns the
// first choice's text.
func (o *OpenAI) Complete(ctx context.Context, systemPrompt string, userMessage string) (string, error) {
	tracer := otel.Tracer("openaiapi/Complete")
	ctx, span := tracer.Start(ctx, "Complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("request.model", o.model),
		attribute.Int("request.max_tokens", maxTokens),
		attribute.Int("system_prompt.length", len(systemPrompt)),
	)

	if err := o.semaphore.Acquire(ctx, 1); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer o.semaphore.Release(1)

	o.logger.Logger(ctx).Info("[OpenAIAPI] Requesting chat completion", zap.Int("message.length", len(userMessage)))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		span.RecordError(err)
		o.logger.Logger(ctx).Error("[OpenAIAPI] Chat completion failed", zap.Error(err))
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		span.RecordError(ErrEmptyCompletion)
		return "", ErrEmptyCompletion
	}

	span.AddEvent("Request successful")
	return resp.Choices[0].Message.Content, nil
}
