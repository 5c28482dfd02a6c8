package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go-audio-emotion/pkg/validation"

	"github.com/subosito/gotenv"
)

const (
	// RequiredSampleRate is what the emotion classifier was trained on
	RequiredSampleRate = 16000

	EnvProduction = "production"

	// DefaultLLMBaseURL is the OpenAI-compatible endpoint of a local ollama
	DefaultLLMBaseURL = "http://localhost:11434/v1"
)

type Config struct {
	Host            string
	Port            string
	Reload          bool
	Env             string
	FrontendURL     string
	LogLevel        string
	MaxUploadSize   int64
	ShutdownTimeout time.Duration

	Classifier ClassifierConfig
	Insight    InsightConfig
	LLM        LLMConfig
	Cache      CacheConfig
}

// ClassifierConfig describes the audio-classification inference service
type ClassifierConfig struct {
	Model      string
	BaseURL    string
	APIToken   string
	Timeout    time.Duration
	SampleRate int
}

// InsightConfig controls the narrative step
type InsightConfig struct {
	Enabled bool
	Mode    string
	TopK    int
}

// LLMConfig describes the chat-style generation backend
type LLMConfig struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float32
	MaxTokens   int
	AWSRegion   string
}

// CacheConfig selects the insight cache backend
type CacheConfig struct {
	Type     string
	TTL      time.Duration
	RedisURL string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// IsProduction reports whether interactive API docs must be disabled
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// AllowedOrigins lists the CORS origins accepted by the API
func (c *Config) AllowedOrigins() []string {
	origins := []string{"http://localhost:3000", "http://localhost:9002"}
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	return origins
}

// LoadDotEnv reads the given .env files into the process environment.
// Missing files are ignored and already-set variables are kept.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = gotenv.Load(f)
	}
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:            getEnvOrDefault("HOST", "0.0.0.0"),
		Port:            getEnvOrDefault("PORT", "8000"),
		Reload:          parseBoolOrDefault("RELOAD", false),
		Env:             getEnvOrDefault("ENV", "development"),
		FrontendURL:     getEnvOrDefault("FRONTEND_URL", "*"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		MaxUploadSize:   parseIntOrDefault("MAX_UPLOAD_SIZE", 0),
		ShutdownTimeout: parseDurationOrDefault("SHUTDOWN_TIMEOUT", 30*time.Second),
		Classifier: ClassifierConfig{
			Model:      getEnvOrDefault("CLASSIFIER_MODEL", "Hatman/audio-emotion-detection"),
			BaseURL:    getEnvOrDefault("CLASSIFIER_URL", "https://api-inference.huggingface.co/models"),
			APIToken:   os.Getenv("HF_API_TOKEN"),
			Timeout:    parseDurationOrDefault("CLASSIFIER_TIMEOUT", 0),
			SampleRate: int(parseIntOrDefault("TARGET_SAMPLE_RATE", RequiredSampleRate)),
		},
		Insight: InsightConfig{
			Enabled: parseBoolOrDefault("INSIGHTS_ENABLED", true),
			Mode:    strings.ToLower(getEnvOrDefault("INSIGHT_MODE", "structured")),
			TopK:    int(parseIntOrDefault("INSIGHT_TOP_K", 5)),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "ollama")),
			Model:       getEnvOrDefault("LLM_MODEL", "qwen2.5:1.5b"),
			BaseURL:     getEnvOrDefault("LLM_BASE_URL", DefaultLLMBaseURL),
			APIKey:      os.Getenv("LLM_API_KEY"),
			Temperature: float32(parseFloatOrDefault("LLM_TEMPERATURE", 0.7)),
			MaxTokens:   int(parseIntOrDefault("LLM_MAX_TOKENS", 1024)),
			AWSRegion:   getEnvOrDefault("AWS_REGION", "us-east-1"),
		},
		Cache: CacheConfig{
			Type:     strings.ToLower(getEnvOrDefault("INSIGHT_CACHE", "none")),
			TTL:      parseDurationOrDefault("INSIGHT_CACHE_TTL", time.Hour),
			RedisURL: getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxUploadSize < 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be >= 0 (got %d)", c.MaxUploadSize)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0 (got %s)", c.ShutdownTimeout)
	}
	if c.Classifier.SampleRate != RequiredSampleRate {
		return fmt.Errorf("TARGET_SAMPLE_RATE must be %d for the emotion classifier (got %d)",
			RequiredSampleRate, c.Classifier.SampleRate)
	}
	if strings.TrimSpace(c.Classifier.Model) == "" {
		return fmt.Errorf("CLASSIFIER_MODEL must not be empty")
	}
	switch c.Insight.Mode {
	case "raw", "structured":
	default:
		return fmt.Errorf("unsupported INSIGHT_MODE: %q (want raw or structured)", c.Insight.Mode)
	}
	if c.Insight.TopK < 1 {
		return fmt.Errorf("INSIGHT_TOP_K must be >= 1 (got %d)", c.Insight.TopK)
	}
	switch c.LLM.Provider {
	case "ollama", "openai", "gemini", "bedrock":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %q", c.LLM.Provider)
	}
	switch c.Cache.Type {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("unsupported INSIGHT_CACHE: %q", c.Cache.Type)
	}
	if c.Cache.Type != "none" && c.Cache.TTL <= 0 {
		return fmt.Errorf("INSIGHT_CACHE_TTL must be > 0 (got %s)", c.Cache.TTL)
	}
	return c.validateEndpoints()
}

// validateEndpoints checks only the URLs the selected components will use
func (c *Config) validateEndpoints() error {
	endpoints := validation.NewEndpointValidator()

	if err := endpoints.ValidateOrigin("FRONTEND_URL", c.FrontendURL); err != nil {
		return err
	}
	if c.Classifier.Model != "stub" {
		if err := endpoints.ValidateEndpoint("CLASSIFIER_URL", c.Classifier.BaseURL); err != nil {
			return err
		}
	}
	if c.Insight.Enabled && (c.LLM.Provider == "ollama" || c.LLM.Provider == "openai") {
		if err := endpoints.ValidateEndpoint("LLM_BASE_URL", c.LLM.BaseURL); err != nil {
			return err
		}
	}
	if c.Cache.Type == "redis" {
		redisURLs := validation.NewEndpointValidatorWithSchemes("redis", "rediss")
		if err := redisURLs.ValidateEndpoint("REDIS_URL", c.Cache.RedisURL); err != nil {
			return err
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(value))); err == nil {
			return b
		}
	}
	return defaultValue
}
