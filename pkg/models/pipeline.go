package models

import (
	"runtime"
	"time"
)

// MaxWorkerCeiling caps worker pools regardless of available cores.
const MaxWorkerCeiling = 32

// DefaultWorkerCount derives a worker pool size from the host CPU count,
// capped at MaxWorkerCeiling. It is a default only; callers pass the final
// value into constructors explicitly.
func DefaultWorkerCount() int {
	n := 2 * runtime.NumCPU()
	if n > MaxWorkerCeiling {
		n = MaxWorkerCeiling
	}
	if n < 1 {
		n = 1
	}
	return n
}

// PipelineConfig is the immutable per-run configuration of the pipeline.
// It is supplied once per run and never mutated.
type PipelineConfig struct {
	// ChunkTokenLimit is the maximum tokens per chunk.
	ChunkTokenLimit int
	// ChunkOverlap is the token overlap between consecutive chunks of one
	// record, and the width of the sentence-boundary lookback window.
	ChunkOverlap int
	// EmbeddingBatchSize is the number of chunks sent in one embedding call.
	EmbeddingBatchSize int
	// UploadBatchSize is the number of items sent in one upsert/load call.
	UploadBatchSize int
	// MaxRetries is the total attempt count for one remote call.
	MaxRetries uint
	// RetryBaseDelay is the backoff unit; delay grows exponentially with the
	// attempt number.
	RetryBaseDelay time.Duration
	// EmbeddingWorkers bounds concurrent embedding calls.
	EmbeddingWorkers int
	// UploadWorkers bounds concurrent upsert/load calls.
	UploadWorkers int
	// Partitions is the explicit number of contiguous input partitions.
	Partitions int
	// PartitionTimeout is the deadline for one partition. Batches still in
	// flight at the deadline are treated as having exhausted their retries.
	PartitionTimeout time.Duration
}
