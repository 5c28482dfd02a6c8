package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIChatClient talks to any OpenAI-compatible chat completions API.
// Ollama is reached through its /v1 endpoint with an empty key.
type OpenAIChatClient struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
}

// NewOpenAIChatClient creates a client. An empty baseURL keeps the
// library default (api.openai.com).
func NewOpenAIChatClient(apiKey, baseURL, modelName string, maxTokens int, temperature float32) *OpenAIChatClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &OpenAIChatClient{
		client:      openai.NewClientWithConfig(cfg),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (c *OpenAIChatClient) Model() string {
	return c.modelName
}

// Chat sends the messages as a single chat completion request
func (c *OpenAIChatClient) Chat(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with %s: %w", c.modelName, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", c.modelName)
	}

	return resp.Choices[0].Message.Content, nil
}

func toOpenAIRole(role string) string {
	switch role {
	case RoleSystem:
		return openai.ChatMessageRoleSystem
	case RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
