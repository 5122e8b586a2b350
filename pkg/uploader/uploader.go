// Package uploader dispatches batched upserts/loads to a destination with
// bounded concurrency and per-batch retry isolation.
package uploader

import (
	"context"
	"sync/atomic"

	"github.com/alitto/pond"

	"github.com/cinevec/cinevec/internal"
	"github.com/cinevec/cinevec/pkg/backoff"
	"github.com/cinevec/cinevec/pkg/batch"
)

var log = internal.GetLogger()

// Destination receives one batch of items per Upsert call. Implementations
// cover both the vector index and the warehouse loader; only the payload
// shape differs.
type Destination[T any] interface {
	// Name identifies the destination in logs.
	Name() string
	// Upsert writes one batch. An error marks the whole batch failed.
	Upsert(ctx context.Context, items []T) error
}

// Coordinator uploads item sets in fixed-size batches over a bounded worker
// pool. Each batch owns its own retry loop; a batch that exhausts its
// retries is marked failed without blocking or cancelling sibling batches.
type Coordinator[T any] struct {
	batchSize int
	workers   int
	policy    backoff.Policy
}

func NewCoordinator[T any](batchSize, workers int, policy backoff.Policy) *Coordinator[T] {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator[T]{
		batchSize: batchSize,
		workers:   workers,
		policy:    policy,
	}
}

// Upload writes items to dest and reports aggregate success: true only when
// every batch landed. When false, callers must not assume which items
// landed; per-item status is not tracked.
func (c *Coordinator[T]) Upload(ctx context.Context, items []T, dest Destination[T]) bool {
	if len(items) == 0 {
		return true
	}

	batches := batch.Batch(items, c.batchSize)

	var ok atomic.Bool
	ok.Store(true)

	pool := pond.New(c.workers, len(batches))
	for i, itemBatch := range batches {
		i := i
		itemBatch := itemBatch
		pool.Submit(func() {
			err := c.policy.Do(ctx, dest.Name()+" upsert", func() error {
				return dest.Upsert(ctx, itemBatch)
			})
			if err != nil {
				log.Errorf(
					"upload batch %d of %d (%d items) to %s failed permanently: %s",
					i+1, len(batches), len(itemBatch), dest.Name(), err,
				)
				ok.Store(false)
			}
		})
	}
	pool.StopAndWait()

	return ok.Load()
}
