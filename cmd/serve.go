package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storyforge/internal/app"
	"storyforge/pkg/config"
)

var serveInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler loop",
	Long: `Evaluate schedules every minute, generate and render due stories in
the background, and sweep scheduled uploads whose publish time arrived.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVarP(&serveInterval, "interval", "i", time.Minute, "Evaluation interval")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := app.BuildService(ctx, config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	slog.Info("Scheduler started", "interval", serveInterval)

	ticker := time.NewTicker(serveInterval)
	defer ticker.Stop()

	svc.Tick(ctx, time.Now().UTC())

	for {
		select {
		case <-sigChan:
			slog.Info("Shutting down...")
			return nil
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			svc.Tick(ctx, now.UTC())
		}
	}
}
