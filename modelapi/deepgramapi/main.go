package deepgramapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"presentcoachdev/logger"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/pkg/client/listen"
	"go.uber.org/zap"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNoTranscript = errors.New("no transcription found in response")
	ErrEmptyURL     = errors.New("media url is required")
)

type DeepgramAPI struct {
	logger *logger.LogMiddleware
	dg     *api.Client
}

func Connect(logger *logger.LogMiddleware, apiKey string) *DeepgramAPI {
	c := client.NewREST(apiKey, &interfaces.ClientOptions{})
	dg := api.New(c)

	return &DeepgramAPI{logger: logger, dg: dg}
}

// TranscribeURL has Deepgram fetch the media at mediaURL and returns the
// punctuated transcript of its first channel.
func (d *DeepgramAPI) TranscribeURL(ctx context.Context, mediaURL string) (string, error) {
	tracer := otel.Tracer("deepgramapi")
	ctx, span := tracer.Start(ctx, "TranscribeURL")
	defer span.End()

	if strings.TrimSpace(mediaURL) == "" {
		return "", ErrEmptyURL
	}

	span.SetAttributes(attribute.String("media.url", mediaURL))

	logger := d.logger.Logger(ctx)

	options := &interfaces.PreRecordedTranscriptionOptions{
		Punctuate:  true,
		Diarize:    false,
		Language:   "en",
		Utterances: true,
		Model:      "nova-3",
	}

	span.AddEvent("Calling Deepgram API")
	res, err := d.dg.FromURL(ctx, mediaURL, options)
	if err != nil {
		logger.Error("[DeepgramAPI] Transcription failed", zap.Error(err))
		span.RecordError(err)
		span.AddEvent("Deepgram API call failed")
		return "", fmt.Errorf("deepgram transcription failed: %w", err)
	}

	if res != nil && res.Results != nil && len(res.Results.Channels) > 0 {
		channel := res.Results.Channels[0]
		if len(channel.Alternatives) > 0 && channel.Alternatives[0].Transcript != "" {
			transcription := channel.Alternatives[0].Transcript
			logger.Info("[DeepgramAPI] Successfully transcribed media",
				zap.Int("transcription.length", len(transcription)))
			span.AddEvent("Transcription successful", trace.WithAttributes(attribute.Int("transcription.length", len(transcription))))
			return transcription, nil
		}
	}

	logger.Warn("[DeepgramAPI] No transcription found in response")
	span.AddEvent("No transcription found in Deepgram response")
	return "", ErrNoTranscript
}
