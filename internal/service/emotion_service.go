package service

import (
	"context"
	"math"
	"time"

	"go-audio-emotion/internal/audio"
	"go-audio-emotion/internal/classifier"
	apperrors "go-audio-emotion/internal/errors"
	"go-audio-emotion/internal/insight"
	"go-audio-emotion/internal/observer"
	"go-audio-emotion/pkg/models"
	"go-audio-emotion/pkg/validation"
)

const (
	// TopPredictions is the number of scores echoed in the response
	TopPredictions = 3

	// TimestampLayout is ISO-8601 local time with microseconds, no zone
	TimestampLayout = "2006-01-02T15:04:05.000000"
)

// EmotionService defines the interface for audio emotion analysis
type EmotionService interface {
	// ValidateUpload checks the declared content type and payload
	ValidateUpload(contentType string, payload []byte) error

	// ProcessAudio decodes, classifies and narrates one upload
	ProcessAudio(ctx context.Context, audioBytes []byte, audioID string) (*models.AnalysisResult, error)
}

// InsightGenerator narrates the top emotion scores
type InsightGenerator interface {
	Generate(ctx context.Context, scores []models.EmotionScore) insight.Outcome
}

// emotionService assembles analysis results from application-lifetime
// components built once at start-up
type emotionService struct {
	decoder     audio.Decoder
	classifier  classifier.EmotionClassifier
	generator   InsightGenerator
	insightTopK int
	validator   *validation.AudioValidator
	events      observer.Subject
	now         func() time.Time
}

// NewEmotionService creates a new emotion service. A nil generator
// disables insights; a nil events subject disables notifications.
func NewEmotionService(
	decoder audio.Decoder,
	emotionClassifier classifier.EmotionClassifier,
	generator InsightGenerator,
	insightTopK int,
	validator *validation.AudioValidator,
	events observer.Subject,
) EmotionService {
	return &emotionService{
		decoder:     decoder,
		classifier:  emotionClassifier,
		generator:   generator,
		insightTopK: insightTopK,
		validator:   validator,
		events:      events,
		now:         time.Now,
	}
}

func (s *emotionService) ValidateUpload(contentType string, payload []byte) error {
	return s.validator.Validate(contentType, payload)
}

func (s *emotionService) ProcessAudio(ctx context.Context, audioBytes []byte, audioID string) (*models.AnalysisResult, error) {
	s.notify(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		AudioID:   audioID,
		Metadata:  map[string]interface{}{"audio_bytes": len(audioBytes)},
	})

	start := time.Now()

	wave, err := s.decoder.Decode(ctx, audioBytes)
	if err != nil {
		return nil, s.fail(ctx, audioID, start, apperrors.NewProcessingError("failed to decode audio", err))
	}

	scores, err := s.classifier.Classify(ctx, wave)
	if err != nil {
		return nil, s.fail(ctx, audioID, start, apperrors.NewProcessingError("emotion classification failed", err))
	}
	if len(scores) == 0 {
		return nil, s.fail(ctx, audioID, start, apperrors.NewProcessingError("emotion classification failed", classifier.ErrEmptyPrediction))
	}

	// timing covers decode and classification only
	elapsed := time.Since(start)

	result := buildResult(audioID, scores, elapsed)

	if s.generator != nil {
		outcome := s.generator.Generate(ctx, topK(scores, s.insightTopK))
		if outcome.OK() {
			result.Insights = outcome.Text
		} else {
			result.Insights = insight.FallbackMessage(outcome.Err)
			s.notify(ctx, observer.AnalysisEvent{
				EventType:    observer.InsightFailed,
				AudioID:      audioID,
				ErrorMessage: outcome.Err.Error(),
			})
		}
	}

	// stamped on completion, after narration
	result.Timestamp = s.now().Format(TimestampLayout)

	s.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		AudioID:        audioID,
		ProcessingTime: elapsed,
		Success:        true,
		Metadata: map[string]interface{}{
			"detected_emotion": result.DetectedEmotion,
			"confidence":       result.Confidence,
			"model":            s.classifier.Model(),
			"audio_seconds":    wave.Duration().Seconds(),
		},
	})

	return result, nil
}

func (s *emotionService) fail(ctx context.Context, audioID string, start time.Time, err error) error {
	s.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		AudioID:        audioID,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
	return err
}

func (s *emotionService) notify(ctx context.Context, event observer.AnalysisEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}

// buildResult derives every reported field from the sorted scores so the
// detected emotion always mirrors the first top prediction
func buildResult(audioID string, scores []models.EmotionScore, elapsed time.Duration) *models.AnalysisResult {
	top := topK(scores, TopPredictions)
	predictions := make([]models.EmotionPrediction, len(top))
	for i, s := range top {
		predictions[i] = models.EmotionPrediction{
			Emotion:    s.Label,
			Confidence: roundTo(s.Score, 4),
		}
	}

	return &models.AnalysisResult{
		AudioID:         audioID,
		DetectedEmotion: predictions[0].Emotion,
		Confidence:      predictions[0].Confidence,
		TopPredictions:  predictions,
		ProcessingTime:  roundTo(elapsed.Seconds(), 3),
	}
}

func topK(scores []models.EmotionScore, k int) []models.EmotionScore {
	if k < len(scores) {
		return scores[:k]
	}
	return scores
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
