package container

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go-audio-emotion/internal/audio"
	"go-audio-emotion/internal/classifier"
	"go-audio-emotion/internal/config"
	"go-audio-emotion/internal/factory"
	"go-audio-emotion/internal/insight"
	"go-audio-emotion/internal/logger"
	"go-audio-emotion/internal/observer"
	"go-audio-emotion/internal/service"
	"go-audio-emotion/internal/transport"
	"go-audio-emotion/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies. Everything is built once
// in NewContainer and shared by all requests.
type Container struct {
	config         *config.Config
	classifier     classifier.EmotionClassifier
	chatClient     insight.ChatClient
	insightCache   insight.Cache
	metrics        *observer.MetricsObserver
	emotionService service.EmotionService
	handler        http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory()

	emotionClassifier, err := components.ClassifierFactory.CreateClassifier(cfg.Classifier)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	c := &Container{
		config:     cfg,
		classifier: emotionClassifier,
		metrics:    observer.NewMetricsObserver(),
	}

	var generator service.InsightGenerator
	if cfg.Insight.Enabled {
		formatter, err := components.CreateFormatter(cfg.Insight.Mode)
		if err != nil {
			return nil, err
		}

		c.chatClient, err = components.ChatFactory.CreateChatClient(ctx, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat client: %w", err)
		}

		c.insightCache, err = components.CacheFactory.CreateCache(cfg.Cache)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create insight cache: %w", err)
		}

		generator = insight.NewGenerator(c.chatClient, formatter, c.insightCache)
	}

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(c.metrics)

	c.emotionService = service.NewEmotionService(
		audio.NewDecoder(cfg.Classifier.SampleRate),
		emotionClassifier,
		generator,
		cfg.Insight.TopK,
		validation.NewAudioValidator(),
		events,
	)
	c.handler = transport.NewHandler(c.emotionService, c.metrics, cfg)

	logger.WithFields(logrus.Fields{
		"classifier":       emotionClassifier.Model(),
		"insights_enabled": cfg.Insight.Enabled,
		"insight_mode":     cfg.Insight.Mode,
		"llm_provider":     cfg.LLM.Provider,
		"llm_model":        cfg.LLM.Model,
		"insight_cache":    cfg.Cache.Type,
	}).Info("Application components initialized")

	return c, nil
}

// CheckReadiness probes external dependencies. Failures are logged as
// warnings; the service still starts.
func (c *Container) CheckReadiness(ctx context.Context) {
	if err := c.classifier.Ready(ctx); err != nil {
		logger.WithError(err).WithField("model", c.classifier.Model()).
			Warn("Emotion classifier is not ready; requests will fail until it is")
	}

	if pinger, ok := c.insightCache.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			logger.WithError(err).Warn("Insight cache is unreachable; insights will be generated uncached")
		}
	}
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the analysis counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close releases clients that hold connections
func (c *Container) Close() {
	for _, r := range []interface{}{c.chatClient, c.insightCache} {
		if closer, ok := r.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close resource")
			}
		}
	}
}
