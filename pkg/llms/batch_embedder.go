package llms

import (
	"context"

	"github.com/cinevec/cinevec/internal"
	"github.com/cinevec/cinevec/pkg/backoff"
	"github.com/cinevec/cinevec/pkg/models"
)

var log = internal.GetLogger()

// BatchEmbedder embeds one batch of chunk texts per call, retrying the
// remote call with the shared backoff policy. A batch either succeeds
// completely or fails completely: after retries are exhausted every position
// in the result is nil. There is no per-item partial success within one
// remote call.
type BatchEmbedder struct {
	service models.EmbeddingService
	policy  backoff.Policy
}

func NewBatchEmbedder(service models.EmbeddingService, policy backoff.Policy) *BatchEmbedder {
	return &BatchEmbedder{service: service, policy: policy}
}

// EmbedBatch returns one vector per input text, position-aligned. Positions
// are nil only when the whole batch failed permanently.
func (b *BatchEmbedder) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	if len(texts) == 0 {
		return nil
	}

	var embeddings [][]float32
	err := b.policy.Do(ctx, "embed batch", func() error {
		var embedErr error
		embeddings, embedErr = b.service.EmbedTexts(ctx, texts)
		return embedErr
	})
	if err != nil {
		log.Errorf("embedding batch of %d chunks failed permanently: %s", len(texts), err)
		return make([][]float32, len(texts))
	}

	return embeddings
}
