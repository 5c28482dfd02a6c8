package classifier

import (
	"context"

	"go-audio-emotion/internal/audio"
	"go-audio-emotion/pkg/models"
)

// EmotionClassifier maps a 16 kHz waveform to emotion scores sorted by
// score, descending. Implementations are shared by all requests and must
// be safe for concurrent use.
type EmotionClassifier interface {
	Classify(ctx context.Context, wave *audio.Waveform) ([]models.EmotionScore, error)

	// Model returns the pretrained model key
	Model() string

	// Ready reports whether the backing model can serve requests
	Ready(ctx context.Context) error
}
