package classifier

import (
	"context"
	"sync/atomic"

	"go-audio-emotion/internal/audio"
	"go-audio-emotion/pkg/models"
)

// StubModel selects the stub classifier through configuration
const StubModel = "stub"

// StubClassifier returns a fixed prediction list. It is used for local
// runs without an inference service and in tests.
type StubClassifier struct {
	scores []models.EmotionScore
	err    error
	calls  atomic.Int64
}

// NewStubClassifier creates a classifier that always returns scores,
// sorted by score descending
func NewStubClassifier(scores ...models.EmotionScore) *StubClassifier {
	raw := make([]rawScore, len(scores))
	for i, s := range scores {
		raw[i] = rawScore{Label: s.Label, Score: s.Score}
	}
	sorted, err := toEmotionScores(raw)
	return &StubClassifier{scores: sorted, err: err}
}

// NewFailingClassifier creates a classifier whose every call fails with err
func NewFailingClassifier(err error) *StubClassifier {
	return &StubClassifier{err: err}
}

// DefaultStubScores is a plausible distribution for local runs
func DefaultStubScores() []models.EmotionScore {
	return []models.EmotionScore{
		{Label: "neutral", Score: 0.62},
		{Label: "happy", Score: 0.21},
		{Label: "sad", Score: 0.09},
		{Label: "angry", Score: 0.05},
		{Label: "fearful", Score: 0.03},
	}
}

func (s *StubClassifier) Classify(ctx context.Context, _ *audio.Waveform) ([]models.EmotionScore, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.EmotionScore, len(s.scores))
	copy(out, s.scores)
	return out, nil
}

func (s *StubClassifier) Model() string { return StubModel }

func (s *StubClassifier) Ready(context.Context) error { return s.err }

// Calls returns how many times Classify ran
func (s *StubClassifier) Calls() int64 { return s.calls.Load() }
