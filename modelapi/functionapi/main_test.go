package functionapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"presentcoachdev/config"
	"presentcoachdev/httpmiddleware"
	"presentcoachdev/logger"
)

func connectForTest(cfg config.FunctionsConfig) *FunctionAPI {
	if cfg.VideoTimeout == 0 {
		cfg.VideoTimeout = 5 * time.Second
	}
	if cfg.TranscriptTimeout == 0 {
		cfg.TranscriptTimeout = 5 * time.Second
	}
	return Connect(context.Background(), FunctionAPIConnectProps{Logger: logger.Nop(), Config: cfg})
}

func TestAnalyzeVideoForwardsBody(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"total_faces_detected":3}`))
	}))
	defer srv.Close()

	api := connectForTest(config.FunctionsConfig{VideoEndpoint: srv.URL})
	body, err := api.AnalyzeVideo(context.Background(), "https://example.com/talk.mp4")
	if err != nil {
		t.Fatalf("AnalyzeVideo: %v", err)
	}
	if got["video_url"] != "https://example.com/talk.mp4" {
		t.Errorf("forwarded body = %v", got)
	}
	if string(body) != `{"success":true,"total_faces_detected":3}` {
		t.Errorf("body = %s", body)
	}
}

func TestAnalyzeTranscriptUsesCombinedRoute(t *testing.T) {
	var path string
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	api := connectForTest(config.FunctionsConfig{TranscriptEndpoint: srv.URL + "/api/"})
	if _, err := api.AnalyzeTranscript(context.Background(), "hello there"); err != nil {
		t.Fatalf("AnalyzeTranscript: %v", err)
	}
	if path != "/api/analyze_combined" {
		t.Errorf("path = %q", path)
	}
	if got["transcript"] != "hello there" {
		t.Errorf("forwarded body = %v", got)
	}
}

func TestTranscriptInsightsRequestsCoaching(t *testing.T) {
	var got struct {
		Text            string `json:"text"`
		IncludeCoaching bool   `json:"include_coaching"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"coaching_insights":{}}`))
	}))
	defer srv.Close()

	api := connectForTest(config.FunctionsConfig{InsightsTranscriptEndpoint: srv.URL})
	if _, err := api.TranscriptInsights(context.Background(), "slides"); err != nil {
		t.Fatalf("TranscriptInsights: %v", err)
	}
	if got.Text != "slides" || !got.IncludeCoaching {
		t.Errorf("forwarded body = %+v", got)
	}
}

func TestNotConfigured(t *testing.T) {
	api := connectForTest(config.FunctionsConfig{})

	if api.VideoConfigured() || api.TranscriptConfigured() {
		t.Fatal("expected nothing configured")
	}
	if _, err := api.AnalyzeVideo(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("AnalyzeVideo err = %v", err)
	}
	if _, err := api.AnalyzeTranscript(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("AnalyzeTranscript err = %v", err)
	}
	if _, err := api.VideoInsights(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("VideoInsights err = %v", err)
	}
}

func TestUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "down", http.StatusInternalServerError)
			},
			wantErr: httpmiddleware.ErrUnexpectedStatus,
		},
		{
			name: "html body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>oops</html>"))
			},
			wantErr: ErrInvalidBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			api := connectForTest(config.FunctionsConfig{VideoEndpoint: srv.URL})
			_, err := api.AnalyzeVideo(context.Background(), "https://example.com/a.mp4")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
