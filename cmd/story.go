package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"storyforge/internal/app"
	"storyforge/internal/model"
	"storyforge/pkg/config"
)

var (
	storyStatusStyle = map[model.StoryStatus]lipgloss.Style{
		model.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.StatusProcessing: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		model.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		model.StatusFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	regenerateFresh bool
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Inspect and manage stories",
}

var storyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stories with their render and upload state",
	RunE:  runStoryList,
}

var storyProcessCmd = &cobra.Command{
	Use:   "process <story-id>",
	Short: "Render a pending or failed story",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoryProcess,
}

var storyRegenerateCmd = &cobra.Command{
	Use:   "regenerate <story-id>",
	Short: "Reset a story and render it again",
	Long: `Reset a story to pending, clearing scenes, video and upload state.
With --fresh the script and metadata are generated anew; without it
the existing content is re-rendered.`,
	Args: cobra.ExactArgs(1),
	RunE: runStoryRegenerate,
}

func init() {
	storyRegenerateCmd.Flags().BoolVar(&regenerateFresh, "fresh", false, "Generate new content instead of reusing the script")
	storyCmd.AddCommand(storyListCmd)
	storyCmd.AddCommand(storyProcessCmd)
	storyCmd.AddCommand(storyRegenerateCmd)
	rootCmd.AddCommand(storyCmd)
}

func runStoryList(cmd *cobra.Command, args []string) error {
	svc, err := app.BuildService(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	stories := svc.Store().Stories.List()
	if len(stories) == 0 {
		fmt.Println("No stories yet.")
		return nil
	}

	for _, story := range stories {
		status := string(story.Status)
		if style, ok := storyStatusStyle[story.Status]; ok {
			status = style.Render(status)
		}
		fmt.Printf("%s  %-10s  %s\n", story.ID, status, story.Title)
		if story.Error != "" {
			fmt.Printf("    error: %s\n", story.Error)
		}
		printAttempt(story, "youtube", story.YouTube)
		printAttempt(story, "facebook", story.Facebook)
	}
	return nil
}

func printAttempt(story *model.Story, platform string, att model.UploadAttempt) {
	if att.Status == model.UploadNotStarted {
		return
	}
	line := fmt.Sprintf("    %s: %s", platform, att.Status)
	if att.VideoID != "" {
		line += " (" + att.VideoID + ")"
	}
	if att.Error != "" {
		line += " - " + att.Error
	}
	fmt.Println(line)
}

func runStoryProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := app.BuildService(ctx, config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Dispatcher().Process(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Story rendered.")
	return nil
}

func runStoryRegenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := app.BuildService(ctx, config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	story, err := svc.Dispatcher().Regenerate(ctx, args[0], regenerateFresh)
	if err != nil {
		return err
	}
	fmt.Printf("Story %s reset to %s, rendering...\n", story.ID, story.Status)

	return svc.Dispatcher().Process(ctx, story.ID)
}
