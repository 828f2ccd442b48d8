package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/stroytech/stroybot/internal/api/handlers"
	"github.com/stroytech/stroybot/internal/config"
	"github.com/stroytech/stroybot/internal/jobs"
	"github.com/stroytech/stroybot/internal/openai"
	"github.com/stroytech/stroybot/internal/repository"
	"github.com/stroytech/stroybot/internal/server"
	"github.com/stroytech/stroybot/internal/service"
	"github.com/stroytech/stroybot/internal/storage"
	"github.com/stroytech/stroybot/internal/telemetry"
	"github.com/stroytech/stroybot/internal/vectorstore"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the stroybot API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-ingest", false, "Skip corpus ingestion when the index is empty")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Tracing is opt-in via SENTRY_DSN.
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		env := os.Getenv("ENVIRONMENT")
		if env == "" {
			env = "development"
		}
		// Sample everything in development, 10% elsewhere.
		rate := 0.1
		if env == "development" {
			rate = 1.0
		}

		flush, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      env,
			TracesSampleRate: rate,
		})
		if err != nil {
			log.Printf("telemetry init failed, running without tracing: %v", err)
		} else {
			defer flush()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	var store vectorstore.Store
	var productRepo service.ProductRepository

	if cfg.HasDatabase() {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		chunkRepo := repository.NewCorpusChunkRepository(pool, cfg.EmbeddingDimensions)
		if err := chunkRepo.EnsureDimension(ctx); err != nil {
			return fmt.Errorf("index dimension check failed: %w", err)
		}
		store = chunkRepo
		productRepo = repository.NewProductRepository(pool)
	} else {
		memStore, err := vectorstore.NewMemoryStore(cfg.EmbeddingDimensions)
		if err != nil {
			return fmt.Errorf("failed to create in-memory index: %w", err)
		}
		store = memStore
		productRepo = repository.NewMemoryProductRepository(repository.SeedProducts())
		log.Println("DATABASE_URL not set: using in-memory vector index and built-in catalog")
	}

	var classifier *service.ClassificationService
	var extractor *service.ExtractionService
	var queryEmbedder service.QueryEmbedder = unconfiguredEmbedder{}
	var llm *openai.Client

	if cfg.HasOpenAI() {
		llm = openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			ChatModel:           cfg.ChatModel,
		})
		classifier = service.NewClassificationService(llm)
		extractor = service.NewExtractionService(llm)
		queryEmbedder = llm
	} else {
		classifier = service.NewClassificationService(nil)
		extractor = service.NewExtractionService(nil)
		log.Println("OPENAI_API_KEY not set: classification falls back to keywords, retrieval and extraction are unavailable")
	}

	var refreshWorker *jobs.Worker
	if llm != nil {
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

		noIngest, _ := cmd.Flags().GetBool("no-ingest")
		if !noIngest {
			count, err := store.Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to count index entries: %w", err)
			}
			if count == 0 {
				stats, err := ingestSvc.Ingest(ctx)
				if err != nil {
					log.Printf("initial ingestion failed (continuing with empty index): %v", err)
				} else {
					log.Printf("initial ingestion done: %d documents, %d chunks, %d skipped",
						stats.Documents, stats.Chunks, stats.SkippedRecords)
				}
			} else {
				log.Printf("index already holds %d chunks, skipping initial ingestion", count)
			}
		}

		if cfg.RefreshInterval > 0 {
			refreshWorker = jobs.NewWorker(jobs.NewCorpusRefresher(ingestSvc), cfg.RefreshInterval)
			go refreshWorker.Start(ctx)
			log.Printf("corpus refresh worker started (interval %s)", cfg.RefreshInterval)
		}
	}

	retrievalSvc := service.NewRetrievalService(queryEmbedder, store, cfg.RetrievalTopK)
	catalogSvc := service.NewCatalogService(productRepo)
	conversationSvc := service.NewConversationService(
		classifier,
		extractor,
		retrievalSvc,
		catalogSvc,
		service.NewSessionStore(),
	)

	router := server.NewRouter(server.RouterConfig{
		ChatHandler:     handlers.NewChatHandler(conversationSvc),
		SearchHandler:   handlers.NewSearchHandler(retrievalSvc),
		ProductsHandler: handlers.NewProductsHandler(productRepo),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if refreshWorker != nil {
		refreshWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// unconfiguredEmbedder stands in for the query embedder when no OpenAI key is
// set, so /search reports the missing configuration instead of panicking.
type unconfiguredEmbedder struct{}

func (unconfiguredEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("retrieval not configured: OPENAI_API_KEY required")
}

// buildCorpusSource resolves CORPUS_PATH to a local file or an S3 object.
func buildCorpusSource(ctx context.Context, cfg *config.Config) (service.CorpusSource, error) {
	if !cfg.CorpusOnS3() {
		return storage.NewFileSource(cfg.CorpusPath), nil
	}

	bucket, key, err := storage.ParseS3Path(cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	if !cfg.HasS3() {
		return nil, fmt.Errorf("corpus path %s requires S3 credentials (S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY)", cfg.CorpusPath)
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("S3 bucket '%s' ready", bucket)

	return storage.NewS3Source(s3Client, key), nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate wants a database/sql handle, not a pgx pool.
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case err == migrate.ErrNilVersion:
		log.Println("migrations: nothing to apply")
	case err != nil:
		return fmt.Errorf("read migration version: %w", err)
	case dirty:
		return fmt.Errorf("migration version %d is dirty, manual intervention required", version)
	default:
		log.Printf("migrations: at version %d", version)
	}

	return nil
}
