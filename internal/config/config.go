package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Empty DatabaseURL selects the in-memory vector index and the built-in
	// product catalog (no persistence).
	DatabaseURL string `envconfig:"DATABASE_URL"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	ChatModel           string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	// CorpusPath points at the newline-delimited JSON corpus, either a local
	// file or an s3://bucket/key object.
	CorpusPath      string        `envconfig:"CORPUS_PATH" default:"data/raw_materials.jsonl"`
	ChunkSize       int           `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap    int           `envconfig:"CHUNK_OVERLAP" default:"50"`
	RetrievalTopK   int           `envconfig:"RETRIEVAL_TOP_K" default:"5"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"0"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("STROYBOT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasS3() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}

// CorpusOnS3 reports whether the corpus path points at an S3 object.
func (c *Config) CorpusOnS3() bool {
	return strings.HasPrefix(c.CorpusPath, "s3://")
}
