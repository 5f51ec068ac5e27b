package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/storyweft/personae/internal/config"
	"github.com/storyweft/personae/internal/domain"
	"github.com/storyweft/personae/internal/repository"
)

// ProfilesCmd returns the profiles command for inspecting persisted
// profile snapshots.
func ProfilesCmd() *cobra.Command {
	var (
		name    string
		chunkID string
	)

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Query persisted character profile snapshots",
		Long:  "List profile snapshots for a character by name (across chunks, in sequence order) or for a single chunk",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runProfiles(name, chunkID, outputFormat)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Character name to look up")
	cmd.Flags().StringVar(&chunkID, "chunk", "", "Chunk ID to look up")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runProfiles(name, chunkID, outputFormat string) error {
	if (name == "") == (chunkID == "") {
		return fmt.Errorf("exactly one of --name or --chunk is required")
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := getDBPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	snapshotRepo := repository.NewProfileSnapshotRepository(pool)

	var snapshots []*domain.ProfileSnapshot
	if name != "" {
		snapshots, err = snapshotRepo.ListByName(ctx, name)
	} else {
		snapshots, err = snapshotRepo.ListByChunk(ctx, chunkID)
	}
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(snapshots, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	if len(snapshots) == 0 {
		fmt.Println("No snapshots found")
		return nil
	}

	for _, s := range snapshots {
		fmt.Printf("%s  chunk=%s  %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"), s.ChunkID, s.Profile.Name)
		if s.Profile.Role != "" {
			fmt.Printf("  role: %s\n", s.Profile.Role)
		}
		if len(s.Profile.Events) > 0 {
			fmt.Printf("  events: %d\n", len(s.Profile.Events))
		}
	}

	return nil
}
