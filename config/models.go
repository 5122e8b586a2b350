package config

import "time"

// Config holds the configuration of the application.
// Use LoadConfig to create a new instance.
type Config struct {
	Input     InputConfig     `mapstructure:"input"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Index     IndexConfig     `mapstructure:"index"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Log       LogConfig       `mapstructure:"log"`
}

type InputConfig struct {
	// Path to the JSONL records file for this run.
	Path string `mapstructure:"path"`
}

type OpenAIConfig struct {
	// APIKey is loaded from ENV not config file.
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// Dimensions of the embedding vectors the model produces.
	Dimensions int `mapstructure:"dimensions"`
}

type IndexConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	CollectionName string `mapstructure:"collection_name"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type WarehouseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type PipelineConfig struct {
	ChunkTokenLimit    int           `mapstructure:"chunk_token_limit"`
	ChunkOverlap       int           `mapstructure:"chunk_overlap"`
	EmbeddingBatchSize int           `mapstructure:"embedding_batch_size"`
	UploadBatchSize    int           `mapstructure:"upload_batch_size"`
	MaxRetries         uint          `mapstructure:"max_retries"`
	RetryBaseDelay     time.Duration `mapstructure:"retry_base_delay"`
	EmbeddingWorkers   int           `mapstructure:"embedding_workers"`
	UploadWorkers      int           `mapstructure:"upload_workers"`
	Partitions         int           `mapstructure:"partitions"`
	PartitionTimeout   time.Duration `mapstructure:"partition_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}
