package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/storyweft/personae/internal/config"
	"github.com/storyweft/personae/internal/database"
	"github.com/storyweft/personae/internal/domain"
	"github.com/storyweft/personae/internal/repository"
	"github.com/storyweft/personae/internal/service"
	"github.com/storyweft/personae/internal/storage"
)

// RunCmd returns the run command, which processes one document
// synchronously without going through the queue.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Process a document from a local file",
		Long:  "Chunk a document, extract character profiles and persist them, printing the final profiles when done",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := getDBPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
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

	run := &domain.PipelineRun{
		SourceKind: domain.SourceKindFile,
		SourceRef:  path,
		Status:     domain.RunStatusRunning,
	}
	if err := runRepo.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	pipeline := service.NewPipeline(collab, chunkRepo, snapshotRepo, chunker)
	result, err := pipeline.Run(ctx, storage.NewFileSource(path), run.ID)
	if err != nil {
		_ = runRepo.UpdateStatus(ctx, run.ID, domain.RunStatusFailed, err.Error(), 0)
		return fmt.Errorf("run failed: %w", err)
	}

	warnings := ""
	for i, w := range result.Warnings {
		if i > 0 {
			warnings += "; "
		}
		warnings += w
	}
	if err := runRepo.UpdateStatus(ctx, run.ID, domain.RunStatusCompleted, warnings, result.ChunkCount); err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"run_id":      run.ID,
			"chunk_count": result.ChunkCount,
			"profiles":    result.Profiles,
			"warnings":    result.Warnings,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("Run %s completed: %d chunks, %d characters\n", run.ID, result.ChunkCount, len(result.Profiles))
	for _, p := range result.Profiles {
		fmt.Printf("  %s", p.Name)
		if p.Role != "" {
			fmt.Printf(" (%s)", p.Role)
		}
		fmt.Println()
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}

	return nil
}

func getDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}
