package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/docchat-io/docchat/internal/config"
)

// Embedder wraps langchaingo embeddings behind the configured provider.
// Retrieval uses the completion provider's embedding capability, so the
// provider choice follows LLM_PROVIDER.
type Embedder struct {
	model     embeddings.Embedder
	modelName string
}

// NewEmbedder creates an embedder based on configuration.
func NewEmbedder(cfg config.Config) (*Embedder, error) {
	var client embeddings.EmbedderClient
	var name string

	switch cfg.LLMProvider {
	case config.ProviderAzure:
		if cfg.AzureEndpoint == "" || cfg.AzureAPIKey == "" {
			return nil, fmt.Errorf("azure provider requires endpoint and API key")
		}
		llm, err := openai.New(
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithBaseURL(cfg.AzureEndpoint),
			openai.WithToken(cfg.AzureAPIKey),
			openai.WithAPIVersion(azureAPIVersion),
			openai.WithModel(cfg.Deployment),
			openai.WithEmbeddingModel(cfg.EmbedDeploy),
		)
		if err != nil {
			return nil, fmt.Errorf("create azure openai client: %w", err)
		}
		client = llm
		name = cfg.EmbedDeploy

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		llm, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.EmbedDeploy),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		client = llm
		name = cfg.EmbedDeploy

	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithModel(cfg.OllamaModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
		client = llm
		name = cfg.OllamaModel

	default:
		return nil, fmt.Errorf("embedding not supported for provider: %s", cfg.LLMProvider)
	}

	model, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return &Embedder{
		model:     model,
		modelName: name,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.model.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return vec, nil
}

// Model returns the embedding model or deployment name.
func (e *Embedder) Model() string {
	return e.modelName
}
