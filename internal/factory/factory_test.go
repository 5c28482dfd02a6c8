package factory

import (
	"context"
	"testing"
	"time"

	"go-audio-emotion/internal/classifier"
	"go-audio-emotion/internal/config"
	"go-audio-emotion/internal/insight"
)

func TestCreateClassifier(t *testing.T) {
	f := NewClassifierFactory()

	stub, err := f.CreateClassifier(config.ClassifierConfig{Model: classifier.StubModel})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := stub.(*classifier.StubClassifier); !ok {
		t.Errorf("Expected stub classifier, got %T", stub)
	}

	hf, err := f.CreateClassifier(config.ClassifierConfig{
		Model:   "Hatman/audio-emotion-detection",
		BaseURL: "http://localhost:9999/models",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := hf.(*classifier.HuggingFaceClassifier); !ok {
		t.Errorf("Expected Hugging Face classifier, got %T", hf)
	}
	if hf.Model() != "Hatman/audio-emotion-detection" {
		t.Errorf("Unexpected model %s", hf.Model())
	}

	if _, err := f.CreateClassifier(config.ClassifierConfig{}); err == nil {
		t.Error("Expected error for empty model")
	}
}

func TestCreateChatClient(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.LLMConfig
		expectError bool
	}{
		{"ollama", config.LLMConfig{Provider: "ollama", Model: "qwen2.5:1.5b", BaseURL: config.DefaultLLMBaseURL}, false},
		{"openai with key", config.LLMConfig{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-test", BaseURL: config.DefaultLLMBaseURL}, false},
		{"openai without key", config.LLMConfig{Provider: "openai", Model: "gpt-4o-mini"}, true},
		{"gemini without key", config.LLMConfig{Provider: "gemini", Model: "gemini-1.5-flash"}, true},
		{"unknown", config.LLMConfig{Provider: "mystery"}, true},
	}

	f := NewChatFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := f.CreateChatClient(context.Background(), tt.cfg)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if client.Model() != tt.cfg.Model {
				t.Errorf("Expected model %s, got %s", tt.cfg.Model, client.Model())
			}
		})
	}
}

func TestCreateCache(t *testing.T) {
	f := NewCacheFactory()

	none, err := f.CreateCache(config.CacheConfig{Type: "none"})
	if err != nil || none != nil {
		t.Errorf("Expected nil cache for none, got %v, %v", none, err)
	}

	mem, err := f.CreateCache(config.CacheConfig{Type: "memory", TTL: time.Minute})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := mem.(*insight.MemoryCache); !ok {
		t.Errorf("Expected memory cache, got %T", mem)
	}

	rc, err := f.CreateCache(config.CacheConfig{Type: "redis", TTL: time.Minute, RedisURL: "redis://localhost:6379/2"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := rc.(*insight.RedisCache); !ok {
		t.Errorf("Expected redis cache, got %T", rc)
	}

	if _, err := f.CreateCache(config.CacheConfig{Type: "disk"}); err == nil {
		t.Error("Expected error for unknown cache type")
	}
}

func TestComponentFactory_CreateFormatter(t *testing.T) {
	f := NewComponentFactory()
	fm, err := f.CreateFormatter(insight.ModeStructured)
	if err != nil || fm.Mode() != insight.ModeStructured {
		t.Errorf("Unexpected formatter %v, %v", fm, err)
	}
}
