package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"papyrus"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"papyrus"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	GraphServiceURL string `envconfig:"GRAPH_SERVICE_URL" default:"http://graphiti:8000"`
	NSQDHost        string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP        string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey   string `envconfig:"GEMINI_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	EmbeddingDims  int    `envconfig:"EMBEDDING_DIMS" default:"768"`
	EmbedBatchSize int    `envconfig:"EMBED_BATCH_SIZE" default:"20"`

	// Chunking
	ChunkSize         int  `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap      int  `envconfig:"CHUNK_OVERLAP" default:"200"`
	MaxChunkSize      int  `envconfig:"MAX_CHUNK_SIZE" default:"2000"`
	MinChunkSize      int  `envconfig:"MIN_CHUNK_SIZE" default:"100"`
	PreserveStructure bool `envconfig:"PRESERVE_STRUCTURE" default:"true"`

	// Server
	ServerPort      int    `envconfig:"SERVER_PORT" default:"8081"`
	MaxUploadSizeMB int64  `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`
	UploadDir       string `envconfig:"PAPYRUS_UPLOAD_DIR" default:"./uploads"`
	MigrationPath   string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Fusion defaults
	VectorWeight float64 `envconfig:"VECTOR_WEIGHT" default:"0.7"`
	GraphWeight  float64 `envconfig:"GRAPH_WEIGHT" default:"0.3"`
	SearchLimit  int     `envconfig:"SEARCH_LIMIT" default:"10"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.MaxChunkSize < c.ChunkSize {
		return fmt.Errorf("max chunk size %d must be at least chunk size %d", c.MaxChunkSize, c.ChunkSize)
	}
	if c.EmbedBatchSize < 1 {
		return fmt.Errorf("embed batch size must be at least 1, got %d", c.EmbedBatchSize)
	}
	return nil
}

// Topics published by the ingestion pipeline for out-of-process consumers.
const (
	TopicIngestProgress = "ingest.progress"
	TopicIngestResult   = "ingest.result"
)
