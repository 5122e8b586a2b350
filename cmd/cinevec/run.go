package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cinevec/cinevec/config"
	"github.com/cinevec/cinevec/pkg/aggregator"
	"github.com/cinevec/cinevec/pkg/backoff"
	"github.com/cinevec/cinevec/pkg/llms"
	"github.com/cinevec/cinevec/pkg/loader"
	"github.com/cinevec/cinevec/pkg/pipeline"
	"github.com/cinevec/cinevec/pkg/splitter"
	"github.com/cinevec/cinevec/pkg/vectordb"
	"github.com/cinevec/cinevec/pkg/warehouse"
)

// run is the entrypoint for one pipeline invocation
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring cinevec: %s", err)
	}

	handleCLIOptions(cfg)

	log.Infof("Starting cinevec pipeline version %s", config.VersionString)

	config.SetLogLevel(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %s", err)
	}

	ctx := context.Background()
	driver, err := newDriver(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize pipeline: %s", err)
	}

	records, err := loader.ReadRecords(cfg.Input.Path)
	if err != nil {
		log.Fatalf("Failed to read records: %s", err)
	}
	if len(records) == 0 {
		log.Warn("No records to process")
		return
	}

	summary := driver.Run(ctx, records)

	if !summary.IndexOK || !summary.TextOK || !summary.ProcessLogOK {
		log.Errorf(
			"run %s finished with upload failures: index ok: %t, movie_text ok: %t, movie_process_log ok: %t",
			summary.RunID, summary.IndexOK, summary.TextOK, summary.ProcessLogOK,
		)
		os.Exit(1)
	}
}

// newDriver wires the pipeline from configuration: splitter, embedding
// client, aggregator, and the three upload destinations.
func newDriver(ctx context.Context, cfg *config.Config) (*pipeline.Driver, error) {
	pipelineCfg := cfg.PipelineConfig()

	s, err := splitter.NewSplitter()
	if err != nil {
		return nil, err
	}

	embeddingsClient, err := llms.NewOpenAIEmbeddingsClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	if err != nil {
		return nil, err
	}
	policy := backoff.NewPolicy(pipelineCfg.MaxRetries, pipelineCfg.RetryBaseDelay)
	embedder := llms.NewBatchEmbedder(embeddingsClient, policy)

	agg := aggregator.NewAggregator(s, embedder, pipelineCfg)

	index, err := vectordb.NewQdrantDestination(vectordb.Config{
		Endpoint:       cfg.Index.Endpoint,
		CollectionName: cfg.Index.CollectionName,
		TimeoutSeconds: cfg.Index.TimeoutSeconds,
	})
	if err != nil {
		return nil, err
	}
	if err := index.Health(ctx); err != nil {
		return nil, err
	}
	if err := index.EnsureCollection(ctx, cfg.OpenAI.Dimensions); err != nil {
		return nil, err
	}

	db := warehouse.NewPostgresConn(cfg.Warehouse.Postgres.DSN)
	if cfg.Log.Level == "debug" {
		warehouse.EnableDebugLogging(db)
	}
	if err := warehouse.CreateSchema(ctx, db); err != nil {
		return nil, err
	}

	destinations := pipeline.Destinations{
		Index:      index,
		Text:       warehouse.NewTextDestination(db),
		ProcessLog: warehouse.NewProcessLogDestination(db),
	}

	return pipeline.NewDriver(
		pipelineCfg,
		agg,
		destinations,
		filepath.Base(cfg.Input.Path),
	), nil
}
