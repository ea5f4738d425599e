package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyforge/internal/app"
	"storyforge/internal/uploader"
	"storyforge/pkg/config"
)

var uploadPlatform string

var uploadCmd = &cobra.Command{
	Use:   "upload <story-id>",
	Short: "Upload a rendered story to its destinations",
	Long: `Upload a completed story. Destinations that already completed or
are mid-upload are skipped; failed attempts are retried with a fresh
session.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadPlatform, "platform", "p", "", "Only this platform (youtube or facebook)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := app.BuildService(ctx, config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	storyID := args[0]

	switch uploadPlatform {
	case "":
		err = svc.Uploads().UploadAll(ctx, storyID)
	case uploader.PlatformYouTube, uploader.PlatformFacebook:
		err = svc.Uploads().Upload(ctx, storyID, uploadPlatform)
	default:
		return fmt.Errorf("unknown platform %q", uploadPlatform)
	}
	if err != nil {
		return err
	}

	story, err := svc.Store().Stories.Get(storyID)
	if err != nil {
		return err
	}
	printAttempt(story, "youtube", story.YouTube)
	printAttempt(story, "facebook", story.Facebook)
	return nil
}
