package deepgramapi

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"presentcoachdev/logger"
)

func TestTranscribeURLRequiresURL(t *testing.T) {
	d := Connect(logger.Nop(), "unused-key")

	if _, err := d.TranscribeURL(context.Background(), "  "); !errors.Is(err, ErrEmptyURL) {
		t.Fatalf("err = %v, want ErrEmptyURL", err)
	}
}

func TestTranscribeURLLive(t *testing.T) {
	apiKey := os.Getenv("DEEPGRAM_API_KEY")
	mediaURL := os.Getenv("DEEPGRAM_TEST_MEDIA_URL")
	if apiKey == "" || mediaURL == "" {
		t.Skip("DEEPGRAM_API_KEY or DEEPGRAM_TEST_MEDIA_URL not set, skipping test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	d := Connect(logger.Connect(logger.LoggerConnectProps{Production: false}), apiKey)
	transcript, err := d.TranscribeURL(ctx, mediaURL)
	if err != nil {
		t.Fatalf("TranscribeURL failed: %v", err)
	}
	if transcript == "" {
		t.Error("Expected non-empty transcript, got empty string")
	}

	t.Logf("Transcript received: %s", transcript)
}
