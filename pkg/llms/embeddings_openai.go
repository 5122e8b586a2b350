package llms

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/cinevec/cinevec/pkg/models"
)

const DefaultEmbeddingModel = string(openai.AdaEmbeddingV2)

var _ models.EmbeddingService = &OpenAIEmbeddingsClient{}

// OpenAIEmbeddingsClient calls the OpenAI embeddings API. Retry and failure
// isolation live in BatchEmbedder, not here; one EmbedTexts call is exactly
// one remote call.
type OpenAIEmbeddingsClient struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbeddingsClient(apiKey, model string) (*OpenAIEmbeddingsClient, error) {
	if apiKey == "" {
		return nil, models.NewBadConfigError("openai api key is not set", nil)
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIEmbeddingsClient{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}, nil
}

func (c *OpenAIEmbeddingsClient) EmbedTexts(
	ctx context.Context,
	texts []string,
) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, models.ErrEmptyBatch
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf(
			"invalid number of embeddings returned: got %d, want %d",
			len(resp.Data),
			len(texts),
		)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i := range resp.Data {
		embeddings[i] = resp.Data[i].Embedding
	}
	return embeddings, nil
}
