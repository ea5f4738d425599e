package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"storyforge/internal/app"
	"storyforge/internal/pipeline"
	"storyforge/pkg/config"
)

var (
	generateTopic    string
	generateStyle    string
	generateAspect   string
	generateChannel  string
	generatePage     string
	generateAt       string
	generateNoRender bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a single story",
	Long: `Generate one story outside any schedule. The story renders
immediately unless --no-render is given. Uploads start only on demand
via the upload command, except that a story given --publish-at and a
destination is picked up by the scheduler sweep once its publish time
arrives.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "Topic for the story (empty lets the model pick)")
	generateCmd.Flags().StringVarP(&generateStyle, "style", "s", "", "Content style tag")
	generateCmd.Flags().StringVar(&generateAspect, "aspect", "", "Aspect ratio, e.g. 9:16")
	generateCmd.Flags().StringVar(&generateChannel, "youtube", "", "YouTube channel id to associate")
	generateCmd.Flags().StringVar(&generatePage, "facebook", "", "Facebook page id to associate")
	generateCmd.Flags().StringVar(&generateAt, "publish-at", "", "Future publish time (RFC 3339)")
	generateCmd.Flags().BoolVar(&generateNoRender, "no-render", false, "Create the story but skip rendering")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	svc, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	req := pipeline.CreateRequest{
		Topic:            generateTopic,
		Style:            generateStyle,
		AspectRatio:      generateAspect,
		YouTubeChannelID: generateChannel,
		FacebookPageID:   generatePage,
	}
	if req.Style == "" {
		req.Style = cfg.Generator.DefaultStyle
	}
	if req.AspectRatio == "" {
		req.AspectRatio = cfg.Generator.AspectRatio
	}
	if generateAt != "" {
		at, err := time.Parse(time.RFC3339, generateAt)
		if err != nil {
			return fmt.Errorf("parse --publish-at: %w", err)
		}
		req.ScheduledFor = &at
	}

	slog.Info("Generating story...", "topic", generateTopic, "style", req.Style)
	story, err := svc.Dispatcher().Create(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Created story %s: %s\n", story.ID, story.Title)

	if generateNoRender {
		return nil
	}

	slog.Info("Rendering story...", "id", story.ID)
	if err := svc.Dispatcher().Process(ctx, story.ID); err != nil {
		return err
	}

	story, err = svc.Store().Stories.Get(story.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Rendered video: %s\n", story.VideoPath)
	return nil
}
