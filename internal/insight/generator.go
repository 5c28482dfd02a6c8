package insight

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	apperrors "go-audio-emotion/internal/errors"
	"go-audio-emotion/internal/logger"
	"go-audio-emotion/pkg/models"

	"github.com/sirupsen/logrus"
)

const fallbackPrefix = "🤔 Emotion analysis completed. Dominant emotions detected with AI-powered insights temporarily unavailable. Error: "

// Outcome is the explicit result of a generation attempt. Exactly one of
// Text and Err is set.
type Outcome struct {
	Text string
	Err  error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// FallbackMessage is the insights text used when generation failed
func FallbackMessage(err error) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
		var appErr *apperrors.AppError
		if stderrors.As(err, &appErr) && appErr.Cause != nil {
			msg = appErr.Cause.Error()
		}
	}
	return fallbackPrefix + msg
}

// Generator narrates emotion scores through a chat model
type Generator struct {
	client    ChatClient
	formatter Formatter
	cache     Cache
}

// NewGenerator creates a generator; cache may be nil
func NewGenerator(client ChatClient, formatter Formatter, cache Cache) *Generator {
	return &Generator{
		client:    client,
		formatter: formatter,
		cache:     cache,
	}
}

func (g *Generator) Mode() string {
	return g.formatter.Mode()
}

// Generate never panics or returns a bare error: failures come back as an
// Outcome carrying a generation AppError
func (g *Generator) Generate(ctx context.Context, scores []models.EmotionScore) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Insight generation panicked")
			out = Outcome{Err: apperrors.NewGenerationError("insight generation failed",
				fmt.Errorf("panic: %v", r))}
		}
	}()

	messages := BuildMessages(g.formatter.SystemPrompt(), scores)
	key := CacheKey(g.client.Model(), g.formatter.Mode(), messages)

	if g.cache != nil {
		text, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			logger.WithError(err).Warn("Insight cache lookup failed")
		} else if ok {
			logger.WithField("mode", g.formatter.Mode()).Debug("Insight cache hit")
			return Outcome{Text: text}
		}
	}

	reply, err := g.client.Chat(ctx, messages)
	if err != nil {
		return Outcome{Err: apperrors.NewGenerationError("insight generation failed", err)}
	}
	if strings.TrimSpace(reply) == "" {
		return Outcome{Err: apperrors.NewGenerationError("insight generation failed",
			stderrors.New("empty reply from "+g.client.Model()))}
	}

	text := g.formatter.Format(reply)

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, text); err != nil {
			logger.WithError(err).Warn("Insight cache store failed")
		}
	}

	logger.WithFields(logrus.Fields{
		"model":  g.client.Model(),
		"mode":   g.formatter.Mode(),
		"scores": len(scores),
	}).Debug("Insights generated")

	return Outcome{Text: text}
}
