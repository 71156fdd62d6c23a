package geminiapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"presentcoachdev/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	maxOutputTokens = 500
	temperature     = 0.7
)

var ErrEmptyCompletion = errors.New("no response received")

type GeminiConnectProps struct {
	Logger *logger.LogMiddleware
	APIKey string
	Model  string
	// Optional overrides, used by tests.
	BaseURL    string
	HTTPClient *http.Client
}

type Gemini struct {
	logger *logger.LogMiddleware
	client *genai.Client
	model  string
}

func Connect(ctx context.Context, args GeminiConnectProps) (*Gemini, error) {
	tracer := otel.Tracer("geminiapi/Connect")
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()
	args.Logger.Logger(ctx).Info("[GeminiAPI] Connecting Gemini API client", zap.String("model", args.Model))

	span.SetAttributes(attribute.String("model", args.Model))

	clientConfig := &genai.ClientConfig{
		APIKey:     args.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: args.HTTPClient,
	}
	if args.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: args.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		span.RecordError(err)
		args.Logger.Logger(ctx).Error("[GeminiAPI] Could not create Gemini client", zap.Error(err))
		return nil, fmt.Errorf("could not create gemini client: %w", err)
	}

	return &Gemini{logger: args.Logger, client: client, model: args.Model}, nil
}

func (g *Gemini) Complete(ctx context.Context, systemPrompt string, userMessage string) (string, error) {
	tracer := otel.Tracer("geminiapi/Complete")
	ctx, span := tracer.Start(ctx, "Complete")
	defer span.End()
	g.logger.Logger(ctx).Info("[GeminiAPI] Requesting chat completion", zap.Int("message.length", len(userMessage)))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userMessage), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		MaxOutputTokens:   maxOutputTokens,
		Temperature:       genai.Ptr[float32](temperature),
	})
	if err != nil {
		span.RecordError(err)
		g.logger.Logger(ctx).Error("[GeminiAPI] Error generating chat content", zap.Error(err))
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		span.AddEvent("EmptyResponse")
		g.logger.Logger(ctx).Warn("[GeminiAPI] Received empty or invalid response")
		return "", ErrEmptyCompletion
	}

	span.AddEvent("LLM generation successful")
	return text, nil
}
