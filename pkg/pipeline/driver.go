// Package pipeline drives one run of the chunk-embed-aggregate-upload
// pipeline over partitioned input records.
package pipeline

import (
	"context"
	"time"

	"github.com/alitto/pond"
	"github.com/google/uuid"

	"github.com/cinevec/cinevec/internal"
	"github.com/cinevec/cinevec/pkg/backoff"
	"github.com/cinevec/cinevec/pkg/models"
	"github.com/cinevec/cinevec/pkg/uploader"
)

var log = internal.GetLogger()

// RecordAggregator produces one embedding per record, in input order.
type RecordAggregator interface {
	Aggregate(ctx context.Context, records []models.Record) []models.RecordEmbedding
}

// Destinations groups the three upload targets of one run: the vector index
// and the two warehouse tables.
type Destinations struct {
	Index      uploader.Destination[models.UploadItem]
	Text       uploader.Destination[models.TextRow]
	ProcessLog uploader.Destination[models.ProcessLogRow]
}

// PartitionResult summarizes one partition's outcome. Failure is visible
// only through the dropped count and the per-destination success flags.
type PartitionResult struct {
	Partition    int
	Processed    int
	Dropped      int
	IndexOK      bool
	TextOK       bool
	ProcessLogOK bool
}

// Summary is the merged outcome of one run across all partitions, in
// partition order.
type Summary struct {
	RunID        uuid.UUID
	Records      int
	Processed    int
	Dropped      int
	IndexOK      bool
	TextOK       bool
	ProcessLogOK bool
	Elapsed      time.Duration
	Partitions   []PartitionResult
}

// Driver orchestrates one partitioned pipeline run: aggregate embeddings,
// split processed from dropped records, upsert vectors into the index, and
// load the warehouse tables.
type Driver struct {
	cfg          models.PipelineConfig
	aggregator   RecordAggregator
	destinations Destinations
	filename     string

	items    *uploader.Coordinator[models.UploadItem]
	textRows *uploader.Coordinator[models.TextRow]
	logRows  *uploader.Coordinator[models.ProcessLogRow]
}

func NewDriver(
	cfg models.PipelineConfig,
	agg RecordAggregator,
	destinations Destinations,
	filename string,
) *Driver {
	policy := backoff.NewPolicy(cfg.MaxRetries, cfg.RetryBaseDelay)
	workers := cfg.UploadWorkers
	if workers < 1 {
		workers = models.DefaultWorkerCount()
	}

	return &Driver{
		cfg:          cfg,
		aggregator:   agg,
		destinations: destinations,
		filename:     filename,
		items:        uploader.NewCoordinator[models.UploadItem](cfg.UploadBatchSize, workers, policy),
		textRows:     uploader.NewCoordinator[models.TextRow](cfg.UploadBatchSize, workers, policy),
		logRows:      uploader.NewCoordinator[models.ProcessLogRow](cfg.UploadBatchSize, workers, policy),
	}
}

// Run processes all records in cfg.Partitions contiguous partitions and
// merges the partition results in partition order. The run completes even
// under partial failure; the summary carries the aggregate outcome.
func (d *Driver) Run(ctx context.Context, records []models.Record) Summary {
	started := time.Now()
	runID := uuid.New()

	log.Infof("starting pipeline run %s: %d records", runID, len(records))

	partitions := Partition(records, d.cfg.Partitions)
	results := make([]PartitionResult, len(partitions))

	workers := len(partitions)
	if ceiling := models.DefaultWorkerCount(); workers > ceiling {
		workers = ceiling
	}
	if workers < 1 {
		workers = 1
	}

	pool := pond.New(workers, len(partitions))
	for i, partition := range partitions {
		i := i
		partition := partition
		pool.Submit(func() {
			results[i] = d.runPartition(ctx, i, runID, partition)
		})
	}
	pool.StopAndWait()

	summary := Summary{
		RunID:        runID,
		Records:      len(records),
		IndexOK:      true,
		TextOK:       true,
		ProcessLogOK: true,
		Partitions:   results,
	}
	for _, r := range results {
		summary.Processed += r.Processed
		summary.Dropped += r.Dropped
		summary.IndexOK = summary.IndexOK && r.IndexOK
		summary.TextOK = summary.TextOK && r.TextOK
		summary.ProcessLogOK = summary.ProcessLogOK && r.ProcessLogOK
	}
	summary.Elapsed = time.Since(started)

	log.Infof(
		"pipeline run %s complete: %d processed, %d dropped, index ok: %t, warehouse ok: %t/%t, elapsed: %s",
		runID, summary.Processed, summary.Dropped,
		summary.IndexOK, summary.TextOK, summary.ProcessLogOK, summary.Elapsed,
	)

	return summary
}

// runPartition processes one contiguous partition of records end to end.
func (d *Driver) runPartition(
	ctx context.Context,
	index int,
	runID uuid.UUID,
	records []models.Record,
) PartitionResult {
	if d.cfg.PartitionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.PartitionTimeout)
		defer cancel()
	}

	embeddings := d.aggregator.Aggregate(ctx, records)

	now := time.Now().UTC()
	processDate := now.Format("2006-01-02")

	var uploadItems []models.UploadItem
	var textRows []models.TextRow
	logRows := make([]models.ProcessLogRow, 0, len(records))

	result := PartitionResult{Partition: index}
	for _, embedding := range embeddings {
		record := records[embedding.RecordIndex]

		if embedding.Vector == nil {
			// Total-loss record: every chunk failed. It is recorded as
			// dropped rather than silently discarded.
			result.Dropped++
			logRows = append(logRows, models.ProcessLogRow{
				ID:          record.ID,
				ProcessDate: processDate,
				Filename:    d.filename,
				Status:      models.StatusDropped,
				CreatedAt:   now,
			})
			continue
		}

		result.Processed++
		uploadItems = append(uploadItems, models.UploadItem{
			ID:     record.ID,
			Vector: embedding.Vector,
			Metadata: map[string]interface{}{
				"title":  record.Title,
				"run_id": runID.String(),
			},
		})
		textRows = append(textRows, models.TextRow{
			ID:           record.ID,
			CombinedText: record.CombinedText(),
			CreatedAt:    now,
		})
		logRows = append(logRows, models.ProcessLogRow{
			ID:          record.ID,
			ProcessDate: processDate,
			Filename:    d.filename,
			Status:      models.StatusProcessed,
			CreatedAt:   now,
		})
	}

	result.IndexOK = d.items.Upload(ctx, uploadItems, d.destinations.Index)
	result.TextOK = d.textRows.Upload(ctx, textRows, d.destinations.Text)
	result.ProcessLogOK = d.logRows.Upload(ctx, logRows, d.destinations.ProcessLog)

	log.Debugf(
		"partition %d: %d processed, %d dropped, index ok: %t",
		index, result.Processed, result.Dropped, result.IndexOK,
	)

	return result
}
