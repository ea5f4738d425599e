package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storyforge/internal/app"
	"storyforge/pkg/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Archive and remove stories past the retention window",
	Long:  `Prune old generation records and delete finished stories older than data.retention_days, archiving their videos first.`,
	RunE:  runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	svc, err := app.BuildService(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	removed, err := svc.Clean(cmd.Context(), time.Now().UTC())
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d stories past retention.\n", removed)
	return nil
}
