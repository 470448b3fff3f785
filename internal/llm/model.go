// Package llm provides completion and embedding services using langchaingo.
package llm

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/docchat-io/docchat/internal/config"
	"github.com/docchat-io/docchat/internal/models"
)

// azureAPIVersion pins the Azure OpenAI REST API version.
const azureAPIVersion = "2025-01-01-preview"

// MaxCompletionTokens is the fixed output-token budget for every
// completion call.
const MaxCompletionTokens = 16384

// Model wraps a langchaingo chat model behind the conversation types.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates a completion model based on configuration.
func NewModel(ctx context.Context, cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error
	var name string

	switch cfg.LLMProvider {
	case config.ProviderAzure:
		if cfg.AzureEndpoint == "" || cfg.AzureAPIKey == "" {
			return nil, fmt.Errorf("azure provider requires endpoint and API key")
		}
		model, err = openai.New(
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithBaseURL(cfg.AzureEndpoint),
			openai.WithToken(cfg.AzureAPIKey),
			openai.WithAPIVersion(azureAPIVersion),
			openai.WithModel(cfg.Deployment),
			openai.WithEmbeddingModel(cfg.EmbedDeploy),
		)
		if err != nil {
			return nil, fmt.Errorf("create azure openai model: %w", err)
		}
		name = cfg.Deployment

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Deployment),
			openai.WithEmbeddingModel(cfg.EmbedDeploy),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		name = cfg.Deployment

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.OllamaModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}
		name = cfg.OllamaModel

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithClient(client),
			bedrock.WithModel(cfg.BedrockModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}
		name = cfg.BedrockModel

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: name,
	}, nil
}

// Complete submits the full turn sequence and returns the assistant text.
// Non-streaming; output capped at MaxCompletionTokens.
func (m *Model) Complete(ctx context.Context, conv models.Conversation) (string, error) {
	messages := make([]llms.MessageContent, 0, len(conv))
	for _, turn := range conv {
		messages = append(messages, llms.TextParts(messageType(turn.Role), turn.Text()))
	}

	response, err := m.llm.GenerateContent(ctx, messages, llms.WithMaxTokens(MaxCompletionTokens))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return response.Choices[0].Content, nil
}

// Model returns the configured model or deployment name.
func (m *Model) Model() string {
	return m.modelName
}

func messageType(role string) llms.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	case models.RoleUser:
		return llms.ChatMessageTypeHuman
	default:
		return llms.ChatMessageTypeGeneric
	}
}
