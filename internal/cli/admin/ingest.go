package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/stroytech/stroybot/internal/config"
	"github.com/stroytech/stroybot/internal/openai"
	"github.com/stroytech/stroybot/internal/repository"
	"github.com/stroytech/stroybot/internal/service"
)

// IngestCmd returns the one-shot corpus ingestion command.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest the corpus into the vector index",
		Long:  "Reads the JSONL corpus, chunks and embeds it, and upserts the chunks into the vector index. Re-running on the same corpus is a no-op.",
		RunE:  runIngest,
	}

	cmd.Flags().String("corpus", "", "Corpus path (overrides STROYBOT_CORPUS_PATH)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if corpusFlag, _ := cmd.Flags().GetString("corpus"); corpusFlag != "" {
		cfg.CorpusPath = corpusFlag
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required for ingestion")
	}
	if !cfg.HasDatabase() {
		return fmt.Errorf("DATABASE_URL is required for ingestion (an in-memory index does not outlive the process)")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	store := repository.NewCorpusChunkRepository(pool, cfg.EmbeddingDimensions)
	if err := store.EnsureDimension(ctx); err != nil {
		return fmt.Errorf("index dimension check failed: %w", err)
	}

	llm := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
	})

	source, err := buildCorpusSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open corpus source: %w", err)
	}

	ingestSvc, err := service.NewIngestionService(source, llm, store, service.ChunkConfig{
		Size:    cfg.ChunkSize,
		Overlap: cfg.ChunkOverlap,
	})
	if err != nil {
		return fmt.Errorf("failed to create ingestion service: %w", err)
	}

	log.Printf("ingesting corpus from %s", source.Name())
	stats, err := ingestSvc.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
