package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"go-audio-emotion/internal/config"
	apperrors "go-audio-emotion/internal/errors"
	"go-audio-emotion/internal/observer"
	"go-audio-emotion/pkg/models"
	"go-audio-emotion/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	validator *validation.AudioValidator
	err       error
	ids       []string
	payloads  [][]byte
}

func newFakeService(err error) *fakeService {
	return &fakeService{validator: validation.NewAudioValidator(), err: err}
}

func (f *fakeService) ValidateUpload(contentType string, payload []byte) error {
	return f.validator.Validate(contentType, payload)
}

func (f *fakeService) ProcessAudio(_ context.Context, audioBytes []byte, audioID string) (*models.AnalysisResult, error) {
	f.ids = append(f.ids, audioID)
	f.payloads = append(f.payloads, audioBytes)
	if f.err != nil {
		return nil, f.err
	}
	return &models.AnalysisResult{
		AudioID:         audioID,
		DetectedEmotion: "happy",
		Confidence:      0.9,
		TopPredictions: []models.EmotionPrediction{
			{Emotion: "happy", Confidence: 0.9},
			{Emotion: "excited", Confidence: 0.07},
			{Emotion: "neutral", Confidence: 0.03},
		},
		ProcessingTime: 0.123,
		Timestamp:      "2025-11-08T10:30:00.000000",
	}, nil
}

func testConfig(env string) *config.Config {
	return &config.Config{Env: env, FrontendURL: "https://app.example.com"}
}

func uploadRequest(t *testing.T, field, contentType string, payload []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="clip.wav"`, field))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("Failed to create part: %v", err)
	}
	_, _ = part.Write(payload)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/audio/analyze", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestAnalyzeAudio_Success(t *testing.T) {
	svc := newFakeService(nil)
	h := NewHandler(svc, nil, testConfig("development"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, UploadField, "audio/wav", []byte("RIFF....")))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Invalid body: %v", err)
	}
	if _, err := uuid.Parse(result.AudioID); err != nil {
		t.Errorf("audio_id %q is not a UUID", result.AudioID)
	}
	if result.DetectedEmotion != result.TopPredictions[0].Emotion {
		t.Error("detected_emotion must mirror top_predictions[0]")
	}
	if strings.Contains(rec.Body.String(), `"insights"`) {
		t.Error("insights must be omitted when empty")
	}
	if string(svc.payloads[0]) != "RIFF...." {
		t.Error("Payload was not passed through unchanged")
	}
}

func TestAnalyzeAudio_FreshIDPerRequest(t *testing.T) {
	svc := newFakeService(nil)
	h := NewHandler(svc, nil, testConfig("development"))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, uploadRequest(t, UploadField, "audio/mpeg", []byte{0xFF, 0xFB}))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
	}

	seen := map[string]bool{}
	for _, id := range svc.ids {
		if seen[id] {
			t.Errorf("Duplicate audio_id %s", id)
		}
		seen[id] = true
	}
}

func TestAnalyzeAudio_FileAlias(t *testing.T) {
	h := NewHandler(newFakeService(nil), nil, testConfig("development"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "file", "audio/wav", []byte("x")))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for alias field, got %d", rec.Code)
	}
}

func TestAnalyzeAudio_ClientErrors(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		contentType string
		payload     []byte
		wantDetail  string
	}{
		{"non-audio content type", UploadField, "text/plain", []byte("hello"), "Invalid file type: text/plain. Must be audio file."},
		{"image content type", UploadField, "image/png", []byte{1}, "Invalid file type: image/png. Must be audio file."},
		{"empty payload", UploadField, "audio/wav", nil, "Empty audio file"},
		{"missing field", "attachment", "audio/wav", []byte("x"), "No audio file provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService(nil)
			h := NewHandler(svc, nil, testConfig("development"))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, uploadRequest(t, tt.field, tt.contentType, tt.payload))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			resp := decodeError(t, rec)
			if !strings.Contains(resp.Detail, tt.wantDetail) {
				t.Errorf("Expected detail to contain %q, got %q", tt.wantDetail, resp.Detail)
			}
			if len(svc.ids) != 0 {
				t.Error("Service must not be called for invalid uploads")
			}
		})
	}
}

func TestAnalyzeAudio_ProcessingFailure(t *testing.T) {
	svc := newFakeService(apperrors.NewProcessingError("failed to decode audio", errors.New("unsupported audio format")))
	h := NewHandler(svc, nil, testConfig("development"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, UploadField, "audio/ogg", []byte("OggS")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Error != "Audio processing failed" {
		t.Errorf("Unexpected error %q", resp.Error)
	}
	if resp.Detail != "Audio processing failed: failed to decode audio: unsupported audio format" {
		t.Errorf("Unexpected detail %q", resp.Detail)
	}
}

func TestAnalyzeAudio_PlainErrorIs500(t *testing.T) {
	h := NewHandler(newFakeService(errors.New("boom")), nil, testConfig("development"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, UploadField, "audio/wav", []byte("x")))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestRootAndHealth(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		wantDocs interface{}
	}{
		{"development", "development", "/docs"},
		{"production", config.EnvProduction, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(newFakeService(nil), nil, testConfig(tt.env))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			var root map[string]interface{}
			_ = json.Unmarshal(rec.Body.Bytes(), &root)
			if root["status"] != "healthy" || root["message"] != "Audio Emotion Detection API is running" {
				t.Errorf("Unexpected root body %v", root)
			}
			if docs, ok := root["docs"]; !ok || docs != tt.wantDocs {
				t.Errorf("Expected docs %v, got %v (present=%v)", tt.wantDocs, docs, ok)
			}

			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			var health models.HealthResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &health)
			want := models.HealthResponse{Status: "healthy", Service: ServiceName, Version: ServiceVersion, ModelLoaded: true}
			if health != want {
				t.Errorf("Unexpected health %+v", health)
			}
		})
	}
}

func TestDocs(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		path     string
		wantCode int
		wantBody string
	}{
		{"docs redirects to UI", "development", DocsPath, http.StatusMovedPermanently, ""},
		{"swagger UI", "development", DocsPath + "/index.html", http.StatusOK, "swagger-ui"},
		{"openapi document", "development", DocsPath + "/doc.json", http.StatusOK, "/api/audio/analyze"},
		{"redoc", "development", RedocPath, http.StatusOK, `spec-url="/docs/doc.json"`},
		{"docs hidden in production", config.EnvProduction, DocsPath, http.StatusNotFound, ""},
		{"swagger UI hidden in production", config.EnvProduction, DocsPath + "/index.html", http.StatusNotFound, ""},
		{"openapi hidden in production", config.EnvProduction, DocsPath + "/doc.json", http.StatusNotFound, ""},
		{"redoc hidden in production", config.EnvProduction, RedocPath, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(newFakeService(nil), nil, testConfig(tt.env))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantCode {
				t.Fatalf("Expected %s status %d, got %d", tt.path, tt.wantCode, rec.Code)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("Expected %s body to contain %q", tt.path, tt.wantBody)
			}
		})
	}
}

func TestDocs_OpenAPIDocument(t *testing.T) {
	h := NewHandler(newFakeService(nil), nil, testConfig("development"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DocsPath+"/doc.json", nil))

	var doc struct {
		Swagger string                            `json:"swagger"`
		Info    struct{ Title, Version string }   `json:"info"`
		Paths   map[string]map[string]interface{} `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("OpenAPI document is not valid JSON: %v", err)
	}
	if doc.Swagger != "2.0" || doc.Info.Version != ServiceVersion {
		t.Errorf("Unexpected document header %+v", doc)
	}
	for path, method := range map[string]string{
		"/":                  "get",
		"/health":            "get",
		"/api/audio/analyze": "post",
		"/api/audio/metrics": "get",
	} {
		if _, ok := doc.Paths[path][method]; !ok {
			t.Errorf("Missing %s %s in OpenAPI document", method, path)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := observer.NewMetricsObserver()
	metrics.OnEvent(context.Background(), observer.AnalysisEvent{EventType: observer.AnalysisStarted})
	metrics.OnEvent(context.Background(), observer.AnalysisEvent{EventType: observer.AnalysisFailed})

	h := NewHandler(newFakeService(nil), metrics, testConfig("development"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audio/metrics", nil))

	var got observer.Metrics
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Invalid body: %v", err)
	}
	if got.TotalAnalyses != 1 || got.FailedAnalyses != 1 {
		t.Errorf("Unexpected metrics %+v", got)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		frontend   string
		origin     string
		wantOrigin string
	}{
		{"local dev origin", "https://app.example.com", "http://localhost:3000", "http://localhost:3000"},
		{"configured frontend", "https://app.example.com", "https://app.example.com", "https://app.example.com"},
		{"unknown origin", "https://app.example.com", "https://evil.example.com", ""},
		{"wildcard frontend", "*", "https://anything.example.com", "https://anything.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Env: "development", FrontendURL: tt.frontend}
			h := NewHandler(newFakeService(nil), nil, cfg)

			req := httptest.NewRequest(http.MethodOptions, "/api/audio/analyze", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Expected Allow-Origin %q, got %q", tt.wantOrigin, got)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("Expected credentials to be allowed")
			}
		})
	}
}

func TestRequestSizeLimiter(t *testing.T) {
	cfg := testConfig("development")
	cfg.MaxUploadSize = 64
	svc := newFakeService(nil)
	h := NewHandler(svc, nil, cfg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, UploadField, "audio/wav", bytes.Repeat([]byte("a"), 4096)))

	if rec.Code < 400 || rec.Code >= 500 {
		t.Errorf("Expected a client error for oversized upload, got %d", rec.Code)
	}
	if len(svc.ids) != 0 {
		t.Error("Oversized upload must not reach the service")
	}
}
