package classifier

import (
	"context"
	"errors"
	"testing"

	"go-audio-emotion/pkg/models"
)

func TestStubClassifier_SortsAndCopies(t *testing.T) {
	stub := NewStubClassifier(
		models.EmotionScore{Label: "neutral", Score: 0.03},
		models.EmotionScore{Label: "happy", Score: 0.9},
		models.EmotionScore{Label: "excited", Score: 0.07},
	)

	scores, err := stub.Classify(context.Background(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"happy", "excited", "neutral"}
	for i, label := range want {
		if scores[i].Label != label {
			t.Errorf("Position %d: expected %s, got %s", i, label, scores[i].Label)
		}
	}

	scores[0].Label = "mutated"
	again, _ := stub.Classify(context.Background(), nil)
	if again[0].Label != "happy" {
		t.Error("Classify must return a fresh slice per call")
	}
	if stub.Calls() != 2 {
		t.Errorf("Expected 2 calls, got %d", stub.Calls())
	}
}

func TestStubClassifier_EmptyIsError(t *testing.T) {
	if _, err := NewStubClassifier().Classify(context.Background(), nil); !errors.Is(err, ErrEmptyPrediction) {
		t.Errorf("Expected ErrEmptyPrediction, got %v", err)
	}
}

func TestFailingClassifier(t *testing.T) {
	boom := errors.New("model crashed")
	c := NewFailingClassifier(boom)
	if _, err := c.Classify(context.Background(), nil); !errors.Is(err, boom) {
		t.Errorf("Expected injected error, got %v", err)
	}
	if err := c.Ready(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Expected Ready to report injected error, got %v", err)
	}
}

func TestToEmotionScores_StableForTies(t *testing.T) {
	scores, err := toEmotionScores([]rawScore{
		{Label: "a", Score: 0.4},
		{Label: "b", Score: 0.4},
		{Label: "c", Score: 0.2},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if scores[0].Label != "a" || scores[1].Label != "b" {
		t.Errorf("Expected ties to keep input order, got %v", scores)
	}
}
