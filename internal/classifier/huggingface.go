package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-audio-emotion/internal/audio"
	"go-audio-emotion/internal/logger"
	"go-audio-emotion/pkg/models"

	"github.com/sirupsen/logrus"
)

const userAgent = "Go-Audio-Emotion/1.0"

// HuggingFaceClassifier calls an audio-classification inference endpoint
// with 16-bit mono WAV bodies. Requests are not retried.
type HuggingFaceClassifier struct {
	client   *http.Client
	endpoint string
	model    string
	token    string
}

// NewHuggingFaceClassifier creates a classifier for baseURL/model.
// A zero timeout leaves calls bounded only by the request context.
func NewHuggingFaceClassifier(baseURL, model, token string, timeout time.Duration) *HuggingFaceClassifier {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HuggingFaceClassifier{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		endpoint: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(model, "/"),
		model:    model,
		token:    token,
	}
}

// Model returns the pretrained model key
func (h *HuggingFaceClassifier) Model() string {
	return h.model
}

// Classify posts the waveform and returns the validated, sorted scores
func (h *HuggingFaceClassifier) Classify(ctx context.Context, wave *audio.Waveform) ([]models.EmotionScore, error) {
	body, err := wave.EncodeWAV()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	h.authorize(req)

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("classifier %s: %s", resp.Status, preview(respBody))
	}

	var raw []rawScore
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w (body: %s)", err, preview(respBody))
	}

	scores, err := toEmotionScores(raw)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"model":       h.model,
		"labels":      len(scores),
		"elapsed_ms":  time.Since(start).Milliseconds(),
		"audio_bytes": len(body),
	}).Debug("Classifier request completed")

	return scores, nil
}

// Ready performs a lightweight GET against the model endpoint
func (h *HuggingFaceClassifier) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	h.authorize(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("classifier unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("classifier not ready: %s: %s", resp.Status, preview(body))
	}
	return nil
}

func (h *HuggingFaceClassifier) authorize(req *http.Request) {
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}

func preview(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if len(raw) > 200 {
		raw = raw[:200] + "..."
	}
	return raw
}
