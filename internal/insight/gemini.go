package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiChatClient generates text with Google Gemini
type GeminiChatClient struct {
	client      *genai.Client
	modelName   string
	maxTokens   int
	temperature float32
}

// NewGeminiChatClient creates a new Gemini client
func NewGeminiChatClient(ctx context.Context, apiKey, modelName string, maxTokens int, temperature float32) (*GeminiChatClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiChatClient{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiChatClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *GeminiChatClient) Model() string {
	return c.modelName
}

// Chat sends the system prompt as a system instruction and the remaining
// turns as content parts. A GenerativeModel is built per call because it
// carries per-request state.
func (c *GeminiChatClient) Chat(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitSystem(messages)

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.SetMaxOutputTokens(int32(c.maxTokens))
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	parts := make([]genai.Part, 0, len(turns))
	for _, m := range turns {
		parts = append(parts, genai.Text(m.Content))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	text := geminiText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
