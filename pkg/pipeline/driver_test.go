package pipeline

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinevec/cinevec/pkg/models"
)

// stubAggregator embeds every record as a constant vector, except records
// whose ID is listed in dropped, which fail entirely.
type stubAggregator struct {
	dropped map[string]bool
}

func (s *stubAggregator) Aggregate(
	_ context.Context,
	records []models.Record,
) []models.RecordEmbedding {
	embeddings := make([]models.RecordEmbedding, len(records))
	for i, record := range records {
		embeddings[i] = models.RecordEmbedding{RecordIndex: i}
		if !s.dropped[record.ID] {
			embeddings[i].Vector = []float32{1, 2}
		}
	}
	return embeddings
}

type itemSink struct {
	mu    sync.Mutex
	items []models.UploadItem
	fail  bool
}

func (s *itemSink) Name() string { return "stub-index" }

func (s *itemSink) Upsert(_ context.Context, items []models.UploadItem) error {
	if s.fail {
		return errors.New("index unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
	return nil
}

type textSink struct {
	mu   sync.Mutex
	rows []models.TextRow
}

func (s *textSink) Name() string { return "stub-text" }

func (s *textSink) Upsert(_ context.Context, rows []models.TextRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

type logSink struct {
	mu   sync.Mutex
	rows []models.ProcessLogRow
}

func (s *logSink) Name() string { return "stub-log" }

func (s *logSink) Upsert(_ context.Context, rows []models.ProcessLogRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

func testDriverConfig() models.PipelineConfig {
	return models.PipelineConfig{
		ChunkTokenLimit:    512,
		ChunkOverlap:       50,
		EmbeddingBatchSize: 8,
		UploadBatchSize:    2,
		MaxRetries:         2,
		RetryBaseDelay:     time.Millisecond,
		EmbeddingWorkers:   2,
		UploadWorkers:      2,
		Partitions:         2,
	}
}

func driverRecords(n int) []models.Record {
	records := make([]models.Record, n)
	for i := range records {
		records[i] = models.Record{
			ID:       "tt" + strconv.Itoa(i),
			Title:    "Film " + strconv.Itoa(i),
			Overview: "Overview " + strconv.Itoa(i) + ".",
		}
	}
	return records
}

func TestRunAllRecordsProcessed(t *testing.T) {
	index := &itemSink{}
	text := &textSink{}
	logs := &logSink{}
	driver := NewDriver(
		testDriverConfig(),
		&stubAggregator{},
		Destinations{Index: index, Text: text, ProcessLog: logs},
		"movies.jsonl",
	)

	summary := driver.Run(context.Background(), driverRecords(7))

	assert.Equal(t, 7, summary.Records)
	assert.Equal(t, 7, summary.Processed)
	assert.Zero(t, summary.Dropped)
	assert.True(t, summary.IndexOK)
	assert.True(t, summary.TextOK)
	assert.True(t, summary.ProcessLogOK)
	assert.Len(t, summary.Partitions, 2)

	assert.Len(t, index.items, 7)
	assert.Len(t, text.rows, 7)
	assert.Len(t, logs.rows, 7)

	for _, row := range logs.rows {
		assert.Equal(t, models.StatusProcessed, row.Status)
		assert.Equal(t, "movies.jsonl", row.Filename)
	}
	for _, item := range index.items {
		assert.Equal(t, summary.RunID.String(), item.Metadata["run_id"])
	}
}

func TestRunDroppedRecordsAreLoggedNotUploaded(t *testing.T) {
	index := &itemSink{}
	text := &textSink{}
	logs := &logSink{}
	driver := NewDriver(
		testDriverConfig(),
		&stubAggregator{dropped: map[string]bool{"tt1": true, "tt4": true}},
		Destinations{Index: index, Text: text, ProcessLog: logs},
		"movies.jsonl",
	)

	summary := driver.Run(context.Background(), driverRecords(6))

	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 2, summary.Dropped)
	assert.True(t, summary.IndexOK)

	// Dropped records never reach the index or the full-text table, but are
	// preserved in the process log for auditability.
	assert.Len(t, index.items, 4)
	assert.Len(t, text.rows, 4)
	require.Len(t, logs.rows, 6)

	statuses := map[string]string{}
	for _, row := range logs.rows {
		statuses[row.ID] = row.Status
	}
	assert.Equal(t, models.StatusDropped, statuses["tt1"])
	assert.Equal(t, models.StatusDropped, statuses["tt4"])
	assert.Equal(t, models.StatusProcessed, statuses["tt0"])
}

func TestRunIndexFailureDoesNotAbortWarehouse(t *testing.T) {
	index := &itemSink{fail: true}
	text := &textSink{}
	logs := &logSink{}
	driver := NewDriver(
		testDriverConfig(),
		&stubAggregator{},
		Destinations{Index: index, Text: text, ProcessLog: logs},
		"movies.jsonl",
	)

	summary := driver.Run(context.Background(), driverRecords(4))

	assert.False(t, summary.IndexOK)
	assert.True(t, summary.TextOK)
	assert.True(t, summary.ProcessLogOK)
	// Warehouse loads still happened despite index failure.
	assert.Len(t, text.rows, 4)
	assert.Len(t, logs.rows, 4)
}

// timeoutIndexSink accepts its first batch immediately and blocks on later
// ones until the context expires.
type timeoutIndexSink struct {
	mu    sync.Mutex
	calls int
	items []models.UploadItem
}

func (s *timeoutIndexSink) Name() string { return "slow-index" }

func (s *timeoutIndexSink) Upsert(ctx context.Context, items []models.UploadItem) error {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	if first {
		s.items = append(s.items, items...)
	}
	s.mu.Unlock()

	if first {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(10 * time.Second):
		return nil
	}
}

func TestRunPartitionTimeoutExpiresInFlightBatches(t *testing.T) {
	cfg := testDriverConfig()
	cfg.Partitions = 1
	cfg.UploadWorkers = 1
	cfg.PartitionTimeout = 50 * time.Millisecond

	index := &timeoutIndexSink{}
	text := &textSink{}
	logs := &logSink{}
	driver := NewDriver(
		cfg,
		&stubAggregator{},
		Destinations{Index: index, Text: text, ProcessLog: logs},
		"movies.jsonl",
	)

	started := time.Now()
	summary := driver.Run(context.Background(), driverRecords(4))

	// The expired deadline fails the blocked batch like retry exhaustion
	// instead of stalling the run for the destination's full latency.
	assert.Less(t, time.Since(started), 5*time.Second)
	assert.False(t, summary.IndexOK)
	require.Len(t, summary.Partitions, 1)
	assert.False(t, summary.Partitions[0].IndexOK)

	// The batch that completed before expiry keeps its items.
	assert.Len(t, index.items, 2)
	assert.Equal(t, 4, summary.Processed)
}

func TestRunEmptyInput(t *testing.T) {
	driver := NewDriver(
		testDriverConfig(),
		&stubAggregator{},
		Destinations{Index: &itemSink{}, Text: &textSink{}, ProcessLog: &logSink{}},
		"movies.jsonl",
	)

	summary := driver.Run(context.Background(), nil)

	assert.Zero(t, summary.Records)
	assert.Zero(t, summary.Processed)
	assert.True(t, summary.IndexOK)
	assert.Empty(t, summary.Partitions)
}

func TestRunCombinedTextReachesWarehouse(t *testing.T) {
	text := &textSink{}
	driver := NewDriver(
		testDriverConfig(),
		&stubAggregator{},
		Destinations{Index: &itemSink{}, Text: text, ProcessLog: &logSink{}},
		"movies.jsonl",
	)

	records := []models.Record{{ID: "tt0", Title: "Solaris", Overview: "An ocean thinks."}}
	driver.Run(context.Background(), records)

	require.Len(t, text.rows, 1)
	assert.Equal(t, "Solaris. An ocean thinks.", text.rows[0].CombinedText)
	assert.True(t, strings.HasPrefix(text.rows[0].ID, "tt"))
}
