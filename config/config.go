package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/cinevec/cinevec/internal"
	"github.com/cinevec/cinevec/pkg/models"
)

// We're bootstrapping so avoid any imports from other packages
var log = logrus.New()

// LoadConfig loads the config file and ENV variables into a Config struct
func LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("CINEVEC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	// Environment variables take precedence over config file
	loadDotEnv()

	err := viper.BindEnv("openai.api_key", "CINEVEC_OPENAI_API_KEY")
	if err != nil {
		log.Fatalf("Error binding environment variable: %s", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("openai.model", "text-embedding-ada-002")
	viper.SetDefault("openai.dimensions", 1536)
	viper.SetDefault("index.collection_name", "movies")
	viper.SetDefault("index.timeout_seconds", 30)
	viper.SetDefault("pipeline.chunk_token_limit", 512)
	viper.SetDefault("pipeline.chunk_overlap", 50)
	viper.SetDefault("pipeline.embedding_batch_size", 100)
	viper.SetDefault("pipeline.upload_batch_size", 100)
	viper.SetDefault("pipeline.max_retries", 3)
	viper.SetDefault("pipeline.retry_base_delay", time.Second)
	viper.SetDefault("pipeline.embedding_workers", models.DefaultWorkerCount())
	viper.SetDefault("pipeline.upload_workers", models.DefaultWorkerCount())
	viper.SetDefault("pipeline.partitions", 4)
	viper.SetDefault("pipeline.partition_timeout", 30*time.Minute)
}

// loadDotEnv loads environment variables from .env file
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Warn(".env file not found or unable to load")
	}
}

// Validate surfaces malformed configuration immediately at pipeline start.
// Missing credentials or paths are fatal, never retried.
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return models.NewBadConfigError("input.path must be set", nil)
	}
	if c.OpenAI.APIKey == "" {
		return models.NewBadConfigError("CINEVEC_OPENAI_API_KEY must be set", nil)
	}
	if c.Index.Endpoint == "" {
		return models.NewBadConfigError("index.endpoint must be set", nil)
	}
	if c.Warehouse.Postgres.DSN == "" {
		return models.NewBadConfigError("warehouse.postgres.dsn must be set", nil)
	}
	if c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkTokenLimit {
		return models.NewBadConfigError("pipeline.chunk_overlap must be smaller than pipeline.chunk_token_limit", nil)
	}
	return nil
}

// PipelineConfig converts the loaded configuration into the immutable
// per-run pipeline configuration.
func (c *Config) PipelineConfig() models.PipelineConfig {
	return models.PipelineConfig{
		ChunkTokenLimit:    c.Pipeline.ChunkTokenLimit,
		ChunkOverlap:       c.Pipeline.ChunkOverlap,
		EmbeddingBatchSize: c.Pipeline.EmbeddingBatchSize,
		UploadBatchSize:    c.Pipeline.UploadBatchSize,
		MaxRetries:         c.Pipeline.MaxRetries,
		RetryBaseDelay:     c.Pipeline.RetryBaseDelay,
		EmbeddingWorkers:   c.Pipeline.EmbeddingWorkers,
		UploadWorkers:      c.Pipeline.UploadWorkers,
		Partitions:         c.Pipeline.Partitions,
		PartitionTimeout:   c.Pipeline.PartitionTimeout,
	}
}

// SetLogLevel sets the log level based on the config file. Defaults to INFO if not set or invalid
func SetLogLevel(cfg *Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	internal.SetLogLevel(level)
	log.Info("Log level set to: ", level)
}
