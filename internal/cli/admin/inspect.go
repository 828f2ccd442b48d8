package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/stroytech/stroybot/internal/config"
	"github.com/stroytech/stroybot/internal/repository"
)

// InspectCmd returns the index inspection command.
func InspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show vector index contents",
		Long:  "Prints the number of indexed chunks and a sample of entries for debugging.",
		RunE:  runInspect,
	}

	cmd.Flags().IntP("limit", "n", 10, "Number of sample entries to print")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasDatabase() {
		return fmt.Errorf("DATABASE_URL is required to inspect the index")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	store := repository.NewCorpusChunkRepository(pool, cfg.EmbeddingDimensions)

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count index entries: %w", err)
	}
	fmt.Printf("indexed chunks: %d\n", count)

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.Sample(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to sample index entries: %w", err)
	}

	for _, e := range entries {
		text := e.Payload.Text
		if len(text) > 120 {
			text = text[:117] + "..."
		}
		fmt.Printf("\n%s\n", e.ID)
		fmt.Printf("  url:   %s (doc %d, chunk %d)\n", e.Payload.URL, e.Payload.DocIndex, e.Payload.ChunkIndex)
		fmt.Printf("  text:  %s\n", text)
	}

	return nil
}
