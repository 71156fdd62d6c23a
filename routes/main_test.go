package routes

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"presentcoachdev/coaching"
	"presentcoachdev/config"
	"presentcoachdev/logger"
	"presentcoachdev/modelapi"
	"presentcoachdev/modelapi/functionapi"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeForwarder struct {
	video              func(string) (json.RawMessage, error)
	transcript         func(string) (json.RawMessage, error)
	videoInsights      func(string) (json.RawMessage, error)
	transcriptInsights func(string) (json.RawMessage, error)
}

func notConfigured(string) (json.RawMessage, error) {
	return nil, functionapi.ErrNotConfigured
}

func unconfiguredForwarder() *fakeForwarder {
	return &fakeForwarder{
		video:              notConfigured,
		transcript:         notConfigured,
		videoInsights:      notConfigured,
		transcriptInsights: notConfigured,
	}
}

func (f *fakeForwarder) AnalyzeVideo(_ context.Context, videoURL string) (json.RawMessage, error) {
	return f.video(videoURL)
}

func (f *fakeForwarder) AnalyzeTranscript(_ context.Context, transcript string) (json.RawMessage, error) {
	return f.transcript(transcript)
}

func (f *fakeForwarder) VideoInsights(_ context.Context, videoURL string) (json.RawMessage, error) {
	return f.videoInsights(videoURL)
}

func (f *fakeForwarder) TranscriptInsights(_ context.Context, transcript string) (json.RawMessage, error) {
	return f.transcriptInsights(transcript)
}

type fakeChat struct {
	mu           sync.Mutex
	systemPrompt string
	userMessage  string
	reply        string
	err          error
}

func (c *fakeChat) Complete(_ context.Context, systemPrompt string, userMessage string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemPrompt = systemPrompt
	c.userMessage = userMessage
	return c.reply, c.err
}

type fakeTranscriber struct {
	text string
	err  error
}

func (t fakeTranscriber) TranscribeURL(context.Context, string) (string, error) {
	return t.text, t.err
}

type testRouter struct {
	*Router
	logs *observer.ObservedLogs
}

func newTestRouter(t *testing.T, fwd AnalysisForwarder, chat ChatCompleter, tr Transcriber) testRouter {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	rt := Connect(context.Background(), RouterConnectProps{
		Logger:      logger.Wrap(zap.New(core)),
		Config:      &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}},
		Functions:   fwd,
		Generator:   coaching.NewGenerator(rand.NewPCG(1, 2)),
		Chat:        chat,
		Transcriber: tr,
		Clock: func() time.Time {
			return time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.FixedZone("EST", -5*3600))
		},
	})
	return testRouter{Router: rt, logs: logs}
}

func (tr testRouter) post(t *testing.T, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	tr.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRequiredFields(t *testing.T) {
	rt := newTestRouter(t, unconfiguredForwarder(), &fakeChat{}, nil)

	tests := []struct {
		path string
		body string
		want string
	}{
		{"/analyze-video", `{}`, "Video URL is required"},
		{"/analyze-video", `{"videoUrl":"   "}`, "Video URL is required"},
		{"/analyze-video", ``, "Video URL is required"},
		{"/analyze-transcript", `{"transcript":""}`, "Transcript text is required"},
		{"/analyze-combined", `{"videoUrl":"","transcript":"  "}`, "Either video URL or transcript is required"},
		{"/api/analyze", `{}`, "Video URL is required"},
		{"/api/analyze-transcript", `{"transcript":" "}`, "Transcript is required"},
		{"/api/chat", `{"message":""}`, "Message is required"},
		{"/analyze-video", `{not json`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.body, func(t *testing.T) {
			rec := rt.post(t, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			got := decode[map[string]any](t, rec)
			if got["error"] != tt.want {
				t.Errorf("error = %v, want %q", got["error"], tt.want)
			}
		})
	}
}

func TestAnalyzeVideoMockFallback(t *testing.T) {
	rt := newTestRouter(t, unconfiguredForwarder(), nil, nil)

	rec := rt.post(t, "/analyze-video", `{"videoUrl":"https://example.com/talk.mp4"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got := decode[coaching.VideoAnalysisResult](t, rec)
	if !got.Success || got.FramesAnalyzed != 10 {
		t.Errorf("unexpected result %+v", got)
	}
	if got.TotalFacesDetected < 2 || got.TotalFacesDetected > 10 {
		t.Errorf("faces = %d, want within [2,10]", got.TotalFacesDetected)
	}
	if len(got.Insights.Recommendations) != 4 {
		t.Errorf("recommendations = %d, want 4", len(got.Insights.Recommendations))
	}
	if rt.logs.FilterMessage("[Router] No analysis function configured, using mock data").Len() != 1 {
		t.Error("expected a not-configured info log")
	}
}

func TestAnalyzeVideoNonHuman(t *testing.T) {
	rt := newTestRouter(t, unconfiguredForwarder(), nil, nil)

	for _, url := range []string{
		"https://cdn.example.com/BigBuckBunny.mp4",
		"https://cdn.example.com/animated-short.mp4",
	} {
		rec := rt.post(t, "/analyze-video", `{"videoUrl":"`+url+`"}`)
		got := decode[map[string]any](t, rec)
		if got["total_faces_detected"] != float64(0) {
			t.Errorf("%s: faces = %v, want 0", url, got["total_faces_detected"])
		}
		insights := got["insights"].(map[string]any)
		if insights["engagement_level"] != coaching.EngagementUndetermined {
			t.Errorf("%s: engagement = %v", url, insights["engagement_level"])
		}
		if insights["average_smile_score"] != "N/A" {
			t.Errorf("%s: smile = %v, want N/A", url, insights["average_smile_score"])
		}
		if _, ok := insights["presenter_age_estimate"]; ok {
			t.Errorf("%s: presenter_age_estimate should be omitted", url)
		}
	}
}

func TestAnalyzeVideoRemotePassthrough(t *testing.T) {
	remote := json.RawMessage(`{"success":true,"total_faces_detected":1,"custom":"field"}`)
	fwd := unconfiguredForwarder()
	fwd.video = func(url string) (json.RawMessage, error) {
		if url != "https://example.com/a.mp4" {
			t.Errorf("forwarded url = %q", url)
		}
		return remote, nil
	}
	rt := newTestRouter(t, fwd, nil, nil)

	rec := rt.post(t, "/analyze-video", `{"videoUrl":" https://example.com/a.mp4 "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != string(remote) {
		t.Errorf("body = %s, want remote body verbatim", rec.Body.String())
	}
}

func TestAnalyzeTranscriptFallbackOnFailure(t *testing.T) {
	fwd := unconfiguredForwarder()
	fwd.transcript = func(string) (json.RawMessage, error) {
		return nil, errors.New("connection refused")
	}
	rt := newTestRouter(t, fwd, nil, nil)

	rec := rt.post(t, "/analyze-transcript", `{"transcript":"um so like we did it um"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	got := decode[coaching.TranscriptAnalysisResult](t, rec)
	if got.Analysis.SpeechPace.TotalWords != 7 {
		t.Errorf("total words = %d, want 7", got.Analysis.SpeechPace.TotalWords)
	}
	if got.Analysis.FillerWords["um"] != 2 || got.Analysis.FillerWords["like"] != 1 {
		t.Errorf("fillers = %v", got.Analysis.FillerWords)
	}
	if len(got.Analysis.Recommendations) != 3 {
		t.Errorf("recommendations = %d, want 3", len(got.Analysis.Recommendations))
	}

	warns := rt.logs.FilterMessage("[Router] Analysis function failed, falling back to mock data").All()
	if len(warns) != 1 || warns[0].Level != zap.WarnLevel {
		t.Fatalf("expected one fallback warning, got %v", warns)
	}
}

func TestAnalyzeCombined(t *testing.T) {
	t.Run("both inputs", func(t *testing.T) {
		rt := newTestRouter(t, unconfiguredForwarder(), nil, nil)
		rec := rt.post(t, "/analyze-combined", `{"videoUrl":"https://example.com/v.mp4","transcript":"hello there everyone"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		got := decode[map[string]json.RawMessage](t, rec)
		if string(got["success"]) != "true" {
			t.Errorf("success = %s", got["success"])
		}
		if got["video_analysis"] == nil || got["transcript_analysis"] == nil {
			t.Errorf("expected both sections, got %s", rec.Body.String())
		}
	})

	t.Run("transcript only", func(t *testing.T) {
		rt := newTestRouter(t, unconfiguredForwarder(), nil, nil)
		rec := rt.post(t, "/analyze-combined", `{"transcript":"hello there"}`)
		got := decode[map[string]json.RawMessage](t, rec)
		if _, ok := got["video_analysis"]; ok {
			t.Error("video_analysis should be omitted")
		}
		if got["transcript_analysis"] == nil {
			t.Error("transcript_analysis missing")
		}
	})

	t.Run("video only without transcriber", func(t *testing.T) {
		rt := newTestRouter(t, unconfiguredForwarder(), nil, nil)
		rec := rt.post(t, "/analyze-combined", `{"videoUrl":"https://example.com/v.mp4"}`)
		got := decode[map[string]json.RawMessage](t, rec)
		if got["video_analysis"] == nil {
			t.Error("video_analysis missing")
		}
		if _, ok := got["transcript_analysis"]; ok {
			t.Error("transcript_analysis should be omitted")
		}
	})

	t.Run("video only with transcriber", func(t *testing.T) {
		var seen string
		var mu sync.Mutex
		fwd := unconfiguredForwarder()
		fwd.transcript = func(text string) (json.RawMessage, error) {
			mu.Lock()
			seen = text
			mu.Unlock()
			return json.RawMessage(`{"success":true,"analysis":{}}`), nil
		}
		rt := newTestRouter(t, fwd, nil, fakeTranscriber{text: "transcribed words"})
		rec := rt.post(t, "/analyze-combined", `{"videoUrl":"https://example.com/v.mp4"}`)
		got := decode[map[string]json.RawMessage](t, rec)
		if string(got["transcript_analysis"]) != `{"success":true,"analysis":{}}` {
			t.Errorf("transcript_analysis = %s", got["transcript_analysis"])
		}
		if seen != "transcribed words" {
			t.Errorf("forwarded transcript = %q", seen)
		}
	})

	t.Run("transcription failure omits transcript", func(t *testing.T) {
		rt := newTestRouter(t, unconfiguredForwarder(), nil, fakeTranscriber{err: errors.New("quota")})
		rec := rt.post(t, "/analyze-combined", `{"videoUrl":"https://example.com/v.mp4"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		got := decode[map[string]json.RawMessage](t, rec)
		if got["video_analysis"] == nil {
			t.Error("video_analysis missing")
		}
		if _, ok := got["transcript_analysis"]; ok {
			t.Error("transcript_analysis should be omitted")
		}
	})
}

func TestInsightsPassthrough(t *testing.T) {
	fwd := unconfiguredForwarder()
	fwd.videoInsights = func(url string) (json.RawMessage, error) {
		return json.RawMessage(`{"archetype":"storyteller"}`), nil
	}
	rt := newTestRouter(t, fwd, nil, nil)

	rec := rt.post(t, "/api/analyze", `{"video_url":"https://example.com/v.mp4"}`)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"archetype":"storyteller"}` {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}

	rec = rt.post(t, "/api/analyze-transcript", `{"transcript":"hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	got := decode[apiError](t, rec)
	if got.Error != "Transcript analysis failed" || got.Message != functionapi.ErrNotConfigured.Error() {
		t.Errorf("got %+v", got)
	}
}

func TestInsightsVideoFailure(t *testing.T) {
	fwd := unconfiguredForwarder()
	fwd.videoInsights = func(string) (json.RawMessage, error) {
		return nil, errors.New("upstream 502")
	}
	rt := newTestRouter(t, fwd, nil, nil)

	rec := rt.post(t, "/api/analyze", `{"video_url":"https://example.com/v.mp4"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[apiError](t, rec)
	if got.Error != "Analysis failed" || got.Message != "upstream 502" {
		t.Errorf("got %+v", got)
	}
}

func TestChat(t *testing.T) {
	chat := &fakeChat{reply: "Slow down a little."}
	rt := newTestRouter(t, unconfiguredForwarder(), chat, nil)

	rec := rt.post(t, "/api/chat", `{"message":"How was my pace?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[chatResponse](t, rec)
	if got.Response != "Slow down a little." {
		t.Errorf("response = %q", got.Response)
	}
	if chat.userMessage != "How was my pace?" {
		t.Errorf("user message = %q", chat.userMessage)
	}
	for _, want := range []string{modelapi.DEFAULT_ARCHETYPE, modelapi.DEFAULT_DEVELOPMENT_STAGE, modelapi.PENDING_LIST_PLACEHOLDER} {
		if !strings.Contains(chat.systemPrompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestChatFailure(t *testing.T) {
	rt := newTestRouter(t, unconfiguredForwarder(), &fakeChat{err: errors.New("rate limited")}, nil)

	rec := rt.post(t, "/api/chat", `{"message":"hi","insights":{"archetype":"storyteller"}}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[apiError](t, rec)
	if got.Error != "Chat failed" || got.Message != "rate limited" {
		t.Errorf("got %+v", got)
	}
}

func TestHealth(t *testing.T) {
	rt := newTestRouter(t, unconfiguredForwarder(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	got := decode[healthResponse](t, rec)
	if got.Status != "healthy" {
		t.Errorf("status = %q", got.Status)
	}
	if got.Timestamp != "2025-03-14T14:26:53.589Z" {
		t.Errorf("timestamp = %q", got.Timestamp)
	}
	if _, err := time.Parse(time.RFC3339Nano, got.Timestamp); err != nil {
		t.Errorf("timestamp does not parse: %v", err)
	}
}

func TestRecoverFromPanic(t *testing.T) {
	fwd := unconfiguredForwarder()
	fwd.video = func(string) (json.RawMessage, error) {
		panic("boom")
	}
	rt := newTestRouter(t, fwd, nil, nil)

	rec := rt.post(t, "/analyze-video", `{"videoUrl":"https://example.com/v.mp4"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[errorEnvelope](t, rec)
	if got.Success || got.Error != "Internal server error" {
		t.Errorf("got %+v", got)
	}
	if rt.logs.FilterMessage("[Router] Recovered from handler panic").Len() != 1 {
		t.Error("expected a panic log entry")
	}
}

func TestRequestIDHeader(t *testing.T) {
	rt := newTestRouter(t, unconfiguredForwarder(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	if _, err := uuid.Parse(rec.Header().Get(requestIDHeader)); err != nil {
		t.Errorf("minted request id is not a uuid: %v", err)
	}

	given := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, given)
	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != given {
		t.Errorf("request id = %q, want %q", got, given)
	}
}
