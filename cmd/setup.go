package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"storyforge/pkg/config"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Storyforge",
	Long:  `Configure API keys, create directories, and set up the environment for Storyforge.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("🎬 Storyforge Setup"))

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Creating directories", createDirectories},
		{"Checking render worker", checkRenderWorker},
		{"Configuring environment", configureEnv},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return nil
}

func createDirectories() error {
	cfg := config.Load()
	dirs := []string{cfg.Data.Dir, cfg.Data.OutputDir, cfg.Data.ArchiveDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	fmt.Println(successStyle.Render("✓ Created directories"))
	return nil
}

func checkRenderWorker() error {
	cfg := config.Load()
	if len(cfg.Render.Command) == 0 {
		fmt.Println(warnStyle.Render("No render command configured, set render.command in config.yaml"))
		return nil
	}

	return runWithSpinner("Checking render worker", func() error {
		if _, err := exec.LookPath(cfg.Render.Command[0]); err != nil {
			return fmt.Errorf("render command %q not found in PATH", cfg.Render.Command[0])
		}
		return nil
	})
}

func configureEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	env := make(map[string]string)

	if err := configureGenerator(env); err != nil {
		return err
	}

	if err := configureYouTube(env); err != nil {
		return err
	}

	if err := configureFacebook(env); err != nil {
		return err
	}

	if err := configureGCS(env); err != nil {
		return err
	}

	return writeEnvFile(env)
}

func configureGenerator(env map[string]string) error {
	var provider string
	if err := huh.NewSelect[string]().
		Title("Script generator").
		Options(
			huh.NewOption("Groq", "groq"),
			huh.NewOption("DeepSeek", "deepseek"),
		).
		Value(&provider).
		Run(); err != nil {
		return err
	}

	var apiKey string
	title, hint := "GROQ API Key", "https://console.groq.com/keys"
	if provider == "deepseek" {
		title, hint = "DeepSeek API Key", "https://platform.deepseek.com/api_keys"
	}

	if err := huh.NewInput().
		Title(title).
		Description(hint).
		EchoMode(huh.EchoModePassword).
		Value(&apiKey).
		Validate(required(title)).
		Run(); err != nil {
		return err
	}

	switch provider {
	case "deepseek":
		env["DEEPSEEK_API_KEY"] = strings.TrimSpace(apiKey)
	default:
		env["GROQ_API_KEY"] = strings.TrimSpace(apiKey)
	}
	return nil
}

func configureYouTube(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Setup YouTube OAuth?").
		Description("Required for uploading videos to YouTube").
		Value(&setup).
		Run(); err != nil || !setup {
		return err
	}

	fmt.Println(infoStyle.Render(`
To create OAuth credentials:
1. Go to https://console.cloud.google.com/apis/credentials
2. Click "Create Credentials" → "OAuth client ID"
3. Choose "Desktop app" as application type
4. Copy the Client ID and Client Secret
`))

	var clientID, clientSecret string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("YouTube Client ID").
				Value(&clientID),
			huh.NewInput().
				Title("YouTube Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&clientSecret),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)

	if clientID != "" {
		env["YOUTUBE_CLIENT_ID"] = clientID
	}
	if clientSecret != "" {
		env["YOUTUBE_CLIENT_SECRET"] = clientSecret
	}

	if clientID != "" && clientSecret != "" {
		fmt.Println(infoStyle.Render("Connect a channel later with: storyforge connect youtube"))
	}
	return nil
}

func configureFacebook(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Setup Facebook uploads?").
		Description("Required for publishing reels to Facebook pages").
		Value(&setup).
		Run(); err != nil || !setup {
		return err
	}

	var appID, appSecret string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Facebook App ID").
				Description("https://developers.facebook.com/apps").
				Value(&appID),
			huh.NewInput().
				Title("Facebook App Secret").
				EchoMode(huh.EchoModePassword).
				Value(&appSecret),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	appID = strings.TrimSpace(appID)
	appSecret = strings.TrimSpace(appSecret)

	if appID != "" {
		env["FACEBOOK_CLIENT_ID"] = appID
	}
	if appSecret != "" {
		env["FACEBOOK_CLIENT_SECRET"] = appSecret
	}

	if appID != "" && appSecret != "" {
		fmt.Println(infoStyle.Render("Connect a page later with: storyforge connect facebook"))
	}
	return nil
}

func configureGCS(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Archive videos to Google Cloud Storage?").
		Description("Finished videos get copied to a bucket before local cleanup (optional)").
		Value(&setup).
		Run(); err != nil || !setup {
		return err
	}

	var bucket string
	if err := huh.NewInput().
		Title("GCS bucket name").
		Value(&bucket).
		Run(); err != nil {
		return err
	}

	bucket = strings.TrimSpace(bucket)
	if bucket != "" {
		env["GCS_BUCKET"] = bucket
	}
	return nil
}

func writeEnvFile(env map[string]string) error {
	f, err := os.Create(".env")
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	order := []string{
		"GROQ_API_KEY",
		"DEEPSEEK_API_KEY",
		"YOUTUBE_CLIENT_ID",
		"YOUTUBE_CLIENT_SECRET",
		"FACEBOOK_CLIENT_ID",
		"FACEBOOK_CLIENT_SECRET",
		"GCS_BUCKET",
	}

	for _, key := range order {
		if val, ok := env[key]; ok && val != "" {
			_, _ = fmt.Fprintf(f, "%s=%s\n", key, val)
		}
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	printNextSteps()
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Connect destinations: storyforge connect youtube")
	fmt.Println("  2. Create a schedule: storyforge schedule add")
	fmt.Println("  3. Run the loop: storyforge serve")
}

func required(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
