package cli

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
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"github.com/storyweft/personae/internal/api/handlers"
	"github.com/storyweft/personae/internal/config"
	"github.com/storyweft/personae/internal/database"
	"github.com/storyweft/personae/internal/domain"
	"github.com/storyweft/personae/internal/jobs"
	"github.com/storyweft/personae/internal/llm"
	"github.com/storyweft/personae/internal/repository"
	"github.com/storyweft/personae/internal/server"
	"github.com/storyweft/personae/internal/service"
	"github.com/storyweft/personae/internal/storage"
	"github.com/storyweft/personae/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and run worker",
		Long:  "Start the personae API server and the background worker that executes queued document runs",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	runRepo := repository.NewPipelineRunRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	snapshotRepo := repository.NewProfileSnapshotRepository(pool)

	collab, err := buildCollaborator(ctx, cfg)
	if err != nil {
		return err
	}

	chunker, err := service.NewTextChunker(service.ChunkConfig{
		Size:    cfg.ChunkSize,
		Overlap: cfg.ChunkOverlap,
	})
	if err != nil {
		return fmt.Errorf("invalid chunk configuration: %w", err)
	}

	var s3Client *storage.S3Client
	if cfg.HasS3() {
		s3Client, err = storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		log.Printf("S3 bucket '%s' configured", cfg.S3Bucket)
	}

	pipeline := service.NewPipeline(collab, chunkRepo, snapshotRepo, chunker)

	resolver := func(kind domain.SourceKind, ref string) (service.DocumentSource, error) {
		switch kind {
		case domain.SourceKindFile:
			return storage.NewFileSource(ref), nil
		case domain.SourceKindS3:
			if s3Client == nil {
				return nil, fmt.Errorf("%w: object storage is not configured", domain.ErrInvalidSourceKind)
			}
			return storage.NewS3Source(s3Client, ref), nil
		default:
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSourceKind, kind)
		}
	}

	runProcessor := jobs.NewRunWorker(runRepo, pipeline, resolver)
	worker := jobs.NewWorker(runProcessor, cfg.WorkerPollInterval)
	go worker.Start(ctx)
	log.Println("run worker started")

	runHandler := handlers.NewRunHandler(runRepo, chunkRepo, cfg.HasS3())
	profileHandler := handlers.NewProfileHandler(snapshotRepo, chunkRepo)

	router := server.NewRouter(server.RouterConfig{
		RunHandler:     runHandler,
		ProfileHandler: profileHandler,
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

	worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// buildCollaborator selects the language-model client from config.
func buildCollaborator(ctx context.Context, cfg *config.Config) (service.Collaborator, error) {
	switch cfg.LLMProvider {
	case "openai":
		if !cfg.HasOpenAI() {
			return nil, fmt.Errorf("PERSONAE_OPENAI_API_KEY is required for the openai provider")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, nil
	case "gemini":
		if !cfg.HasGemini() {
			return nil, fmt.Errorf("PERSONAE_GEMINI_API_KEY is required for the gemini provider")
		}
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (expected openai or gemini)", cfg.LLMProvider)
	}
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
