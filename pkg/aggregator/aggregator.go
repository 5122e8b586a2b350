// Package aggregator fans records out into chunk batches, embeds them
// concurrently, and folds the per-chunk vectors back into one embedding per
// record.
package aggregator

import (
	"context"

	"github.com/alitto/pond"
	"github.com/viterin/vek/vek32"

	"github.com/cinevec/cinevec/internal"
	"github.com/cinevec/cinevec/pkg/batch"
	"github.com/cinevec/cinevec/pkg/models"
	"github.com/cinevec/cinevec/pkg/splitter"
)

var log = internal.GetLogger()

// ChunkEmbedder embeds one batch of chunk texts, returning a position-aligned
// result with nil vectors for permanently failed batches.
type ChunkEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) [][]float32
}

type Aggregator struct {
	splitter  *splitter.Splitter
	embedder  ChunkEmbedder
	batchSize int
	workers   int
	maxTokens int
	overlap   int
}

func NewAggregator(
	s *splitter.Splitter,
	embedder ChunkEmbedder,
	cfg models.PipelineConfig,
) *Aggregator {
	workers := cfg.EmbeddingWorkers
	if workers < 1 {
		workers = models.DefaultWorkerCount()
	}
	return &Aggregator{
		splitter:  s,
		embedder:  embedder,
		batchSize: cfg.EmbeddingBatchSize,
		workers:   workers,
		maxTokens: cfg.ChunkTokenLimit,
		overlap:   cfg.ChunkOverlap,
	}
}

// Aggregate produces one RecordEmbedding per input record, in input order.
// A record's vector is the element-wise mean of its successfully embedded
// chunks in emission order, and is nil only when every chunk failed.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	records []models.Record,
) []models.RecordEmbedding {
	chunks := a.flatten(records)
	results := a.embedChunks(ctx, chunks)
	return foldResults(chunks, results, len(records))
}

// flatten splits every record into its ordered chunks, tagging each chunk
// with its owner record index and the owner's total chunk count.
func (a *Aggregator) flatten(records []models.Record) []models.Chunk {
	var chunks []models.Chunk
	for i, record := range records {
		texts := a.splitter.Split(record.CombinedText(), a.maxTokens, a.overlap)
		for _, text := range texts {
			chunks = append(chunks, models.Chunk{
				OwnerIndex:   i,
				Text:         text,
				SiblingCount: len(texts),
			})
		}
	}
	return chunks
}

// embedChunks dispatches chunk batches to the embedder over a bounded worker
// pool. Each batch writes into its own disjoint range of the result slice,
// so concurrent dispatch cannot reorder results relative to the flattened
// chunk sequence.
func (a *Aggregator) embedChunks(ctx context.Context, chunks []models.Chunk) [][]float32 {
	results := make([][]float32, len(chunks))
	batches := batch.Batch(chunks, a.batchSize)

	pool := pond.New(a.workers, len(batches))

	offset := 0
	for _, chunkBatch := range batches {
		chunkBatch := chunkBatch
		start := offset
		offset += len(chunkBatch)

		pool.Submit(func() {
			texts := make([]string, len(chunkBatch))
			for i := range chunkBatch {
				texts[i] = chunkBatch[i].Text
			}
			copy(results[start:], a.embedder.EmbedBatch(ctx, texts))
		})
	}

	pool.StopAndWait()
	return results
}

// foldResults walks the position-aligned chunk results once, accumulating
// vectors per owner and finalizing each owner's embedding as the element-wise
// mean of its accumulated chunk vectors.
func foldResults(
	chunks []models.Chunk,
	results [][]float32,
	recordCount int,
) []models.RecordEmbedding {
	embeddings := make([]models.RecordEmbedding, recordCount)
	for i := range embeddings {
		embeddings[i] = models.RecordEmbedding{RecordIndex: i}
	}

	currentOwner := -1
	var accumulator [][]float32

	finalize := func(owner int) {
		embeddings[owner].Vector = meanVectors(accumulator)
		accumulator = nil
	}

	for i, vector := range results {
		if vector == nil {
			// Failed chunk: contributes nothing and does not advance the
			// accumulator.
			continue
		}

		chunk := chunks[i]
		if chunk.OwnerIndex != currentOwner {
			if len(accumulator) > 0 {
				finalize(currentOwner)
			}
			currentOwner = chunk.OwnerIndex
			accumulator = [][]float32{vector}
		} else {
			accumulator = append(accumulator, vector)
		}

		// All siblings reported: finalize without waiting for the next
		// owner switch.
		if len(accumulator) == chunk.SiblingCount {
			finalize(currentOwner)
		}
	}

	if len(accumulator) > 0 {
		finalize(currentOwner)
	}

	dropped := 0
	for i := range embeddings {
		if embeddings[i].Vector == nil {
			dropped++
		}
	}
	if dropped > 0 {
		log.Warnf("%d of %d records had no successfully embedded chunks", dropped, recordCount)
	}

	return embeddings
}

// meanVectors computes the unweighted element-wise mean of vectors. All
// vectors are assumed to share one dimensionality.
func meanVectors(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	mean := make([]float32, len(vectors[0]))
	for _, v := range vectors {
		vek32.Add_Inplace(mean, v)
	}
	vek32.DivNumber_Inplace(mean, float32(len(vectors)))
	return mean
}
