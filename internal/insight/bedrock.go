package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// converseAPI is the subset of the Bedrock runtime client used here
type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockChatClient generates text with Amazon Bedrock's Converse API,
// which gives one request shape across model families
type BedrockChatClient struct {
	client      converseAPI
	modelID     string
	maxTokens   int
	temperature float32
}

// NewBedrockChatClient loads the default AWS configuration for region
func NewBedrockChatClient(ctx context.Context, region, modelID string, maxTokens int, temperature float32) (*BedrockChatClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return newBedrockChatClient(bedrockruntime.NewFromConfig(awsCfg), modelID, maxTokens, temperature), nil
}

func newBedrockChatClient(client converseAPI, modelID string, maxTokens int, temperature float32) *BedrockChatClient {
	return &BedrockChatClient{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (c *BedrockChatClient) Model() string {
	return c.modelID
}

func (c *BedrockChatClient) Chat(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitSystem(messages)

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(c.maxTokens)),
			Temperature: aws.Float32(c.temperature),
		},
	}
	if system != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: system},
		}
	}
	for _, m := range turns {
		role := types.ConversationRoleUser
		if m.Role == RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		input.Messages = append(input.Messages, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		})
	}

	resp, err := c.client.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	msg, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("unexpected Bedrock output type %T", resp.Output)
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from Bedrock model %s", c.modelID)
	}
	return sb.String(), nil
}
