package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"storyforge/internal/app"
	"storyforge/pkg/config"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run one scheduler evaluation",
	Long: `Evaluate all schedules once and exit. Meant for external cron setups
that invoke the binary every minute instead of running serve.`,
	RunE: runTick,
}

func init() {
	rootCmd.AddCommand(tickCmd)
}

func runTick(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, err := app.BuildService(ctx, config.Load())
	if err != nil {
		return err
	}

	svc.Tick(ctx, time.Now().UTC())

	// Wait for the background renders and uploads this tick queued.
	svc.Close()
	return nil
}
