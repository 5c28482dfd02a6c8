package classifier

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go-audio-emotion/pkg/models"
)

// ErrEmptyPrediction is returned when the model produced no scores
var ErrEmptyPrediction = errors.New("classifier returned no predictions")

// rawScore is the wire shape of one audio-classification prediction
type rawScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// toEmotionScores validates model output once at the boundary and returns
// it ordered by score, descending. Label uniqueness is not enforced.
func toEmotionScores(raw []rawScore) ([]models.EmotionScore, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyPrediction
	}

	scores := make([]models.EmotionScore, 0, len(raw))
	for i, r := range raw {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			return nil, fmt.Errorf("prediction %d has an empty label", i)
		}
		if math.IsNaN(r.Score) || r.Score < 0 || r.Score > 1 {
			return nil, fmt.Errorf("prediction %q has score %v outside [0,1]", label, r.Score)
		}
		scores = append(scores, models.EmotionScore{Label: label, Score: r.Score})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}
