package factory

import (
	"context"
	"fmt"

	"go-audio-emotion/internal/classifier"
	"go-audio-emotion/internal/config"
	"go-audio-emotion/internal/insight"
)

// ProviderType represents the supported chat backends
type ProviderType string

const (
	// OllamaProvider for a local ollama daemon (OpenAI-compatible /v1)
	OllamaProvider ProviderType = "ollama"
	// OpenAIProvider for api.openai.com or any compatible gateway
	OpenAIProvider ProviderType = "openai"
	// GeminiProvider for Google Gemini
	GeminiProvider ProviderType = "gemini"
	// BedrockProvider for Amazon Bedrock
	BedrockProvider ProviderType = "bedrock"
)

// CacheType represents the insight cache backends
type CacheType string

const (
	NoCache     CacheType = "none"
	MemoryCache CacheType = "memory"
	RedisCache  CacheType = "redis"
)

// ClassifierFactory creates emotion classifiers
type ClassifierFactory interface {
	CreateClassifier(cfg config.ClassifierConfig) (classifier.EmotionClassifier, error)
}

// ChatFactory creates chat clients
type ChatFactory interface {
	CreateChatClient(ctx context.Context, cfg config.LLMConfig) (insight.ChatClient, error)
}

// CacheFactory creates insight caches
type CacheFactory interface {
	CreateCache(cfg config.CacheConfig) (insight.Cache, error)
}

// classifierFactory implements ClassifierFactory
type classifierFactory struct{}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory() ClassifierFactory {
	return &classifierFactory{}
}

// CreateClassifier returns the stub when the model key is "stub", the
// inference client otherwise
func (f *classifierFactory) CreateClassifier(cfg config.ClassifierConfig) (classifier.EmotionClassifier, error) {
	switch cfg.Model {
	case "":
		return nil, fmt.Errorf("classifier model must not be empty")
	case classifier.StubModel:
		return classifier.NewStubClassifier(classifier.DefaultStubScores()...), nil
	default:
		return classifier.NewHuggingFaceClassifier(cfg.BaseURL, cfg.Model, cfg.APIToken, cfg.Timeout), nil
	}
}

// chatFactory implements ChatFactory
type chatFactory struct{}

// NewChatFactory creates a new chat factory
func NewChatFactory() ChatFactory {
	return &chatFactory{}
}

// CreateChatClient creates a chat client based on the configured provider
func (f *chatFactory) CreateChatClient(ctx context.Context, cfg config.LLMConfig) (insight.ChatClient, error) {
	switch ProviderType(cfg.Provider) {
	case OllamaProvider:
		return insight.NewOpenAIChatClient("ollama", cfg.BaseURL, cfg.Model, cfg.MaxTokens, cfg.Temperature), nil
	case OpenAIProvider:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for the openai provider")
		}
		baseURL := cfg.BaseURL
		if baseURL == config.DefaultLLMBaseURL {
			baseURL = ""
		}
		return insight.NewOpenAIChatClient(cfg.APIKey, baseURL, cfg.Model, cfg.MaxTokens, cfg.Temperature), nil
	case GeminiProvider:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for the gemini provider")
		}
		client, err := insight.NewGeminiChatClient(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return client, nil
	case BedrockProvider:
		client, err := insight.NewBedrockChatClient(ctx, cfg.AWSRegion, cfg.Model, cfg.MaxTokens, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// cacheFactory implements CacheFactory
type cacheFactory struct{}

// NewCacheFactory creates a new cache factory
func NewCacheFactory() CacheFactory {
	return &cacheFactory{}
}

// CreateCache returns nil for NoCache
func (f *cacheFactory) CreateCache(cfg config.CacheConfig) (insight.Cache, error) {
	switch CacheType(cfg.Type) {
	case NoCache, "":
		return nil, nil
	case MemoryCache:
		return insight.NewMemoryCache(cfg.TTL), nil
	case RedisCache:
		cache, err := insight.NewRedisCache(cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return cache, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ClassifierFactory ClassifierFactory
	ChatFactory       ChatFactory
	CacheFactory      CacheFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{
		ClassifierFactory: NewClassifierFactory(),
		ChatFactory:       NewChatFactory(),
		CacheFactory:      NewCacheFactory(),
	}
}

// CreateFormatter returns the insight formatter for mode
func (f *ComponentFactory) CreateFormatter(mode string) (insight.Formatter, error) {
	return insight.NewFormatter(mode)
}
