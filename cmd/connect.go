package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"storyforge/internal/app"
	"storyforge/internal/model"
	"storyforge/internal/token"
	"storyforge/pkg/config"
	"storyforge/pkg/httputil"
)

var (
	connectInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	connectSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	connectErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect upload destinations",
	Long:  `Connect YouTube channels and Facebook pages using credentials from .env`,
}

var connectYouTubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Connect a YouTube channel (OAuth)",
	Long:  `Complete the YouTube OAuth flow and store the channel's tokens.`,
	RunE:  runConnectYouTube,
}

var connectFacebookCmd = &cobra.Command{
	Use:   "facebook",
	Short: "Connect a Facebook page",
	Long:  `Store a Facebook page's id and access token, verified against the Graph API.`,
	RunE:  runConnectFacebook,
}

var connectStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List connected destinations",
	RunE:  runConnectStatus,
}

func init() {
	connectCmd.AddCommand(connectYouTubeCmd)
	connectCmd.AddCommand(connectFacebookCmd)
	connectCmd.AddCommand(connectStatusCmd)
	rootCmd.AddCommand(connectCmd)
}

func runConnectStatus(cmd *cobra.Command, args []string) error {
	svc, err := app.BuildService(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	channels := svc.Store().Channels.List()
	pages := svc.Store().Pages.List()

	fmt.Println(connectInfoStyle.Render("\nConnected destinations:\n"))

	if len(channels) == 0 {
		fmt.Println(connectErrorStyle.Render("✗ YouTube: no channels connected"))
		fmt.Println(connectInfoStyle.Render("  Run: storyforge connect youtube"))
	}
	for _, ch := range channels {
		fmt.Println(connectSuccessStyle.Render(fmt.Sprintf("✓ YouTube: %s (%s)", ch.Title, ch.ChannelID)))
	}

	if len(pages) == 0 {
		fmt.Println(connectErrorStyle.Render("✗ Facebook: no pages connected"))
		fmt.Println(connectInfoStyle.Render("  Run: storyforge connect facebook"))
	}
	for _, page := range pages {
		fmt.Println(connectSuccessStyle.Render(fmt.Sprintf("✓ Facebook: %s (%s)", page.Name, page.PageID)))
	}

	fmt.Println()
	return nil
}

func runConnectYouTube(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	if cfg.YouTubeClientID == "" || cfg.YouTubeClientSecret == "" {
		return fmt.Errorf("YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET must be set in .env")
	}

	svc, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	oauthConfig := token.OAuthConfig(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTube.RedirectURL)

	redirect, err := url.Parse(cfg.YouTube.RedirectURL)
	if err != nil {
		return fmt.Errorf("invalid redirect url %q: %w", cfg.YouTube.RedirectURL, err)
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
	}

	server.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != redirect.Path {
			http.NotFound(w, r)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no code in callback")
			_, _ = fmt.Fprintf(w, "<html><body><h1>Error</h1><p>No authorization code received.</p></body></html>")
			return
		}

		codeChan <- code
		_, _ = fmt.Fprintf(w, "<html><body><h1>Success!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Println(connectInfoStyle.Render("\nOpening browser for YouTube authorization..."))
	fmt.Println(connectInfoStyle.Render("If the browser doesn't open, visit:\n" + authURL))

	_ = browser.OpenURL(authURL)

	fmt.Println(connectInfoStyle.Render("\nWaiting for authorization..."))

	select {
	case code := <-codeChan:
		tok, err := oauthConfig.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to exchange code: %w", err)
		}

		channel, err := fetchOwnChannel(ctx, oauthConfig.TokenSource(ctx, tok))
		if err != nil {
			return err
		}
		channel.AccessToken = tok.AccessToken
		channel.RefreshToken = tok.RefreshToken
		channel.Expiry = tok.Expiry
		channel.CreatedAt = time.Now().UTC()

		if err := svc.Store().Channels.Put(channel); err != nil {
			return fmt.Errorf("failed to save channel: %w", err)
		}

		fmt.Println(connectSuccessStyle.Render(fmt.Sprintf("✓ Connected YouTube channel %q (%s)", channel.Title, channel.ChannelID)))
		return nil

	case err := <-errChan:
		return err

	case <-time.After(5 * time.Minute):
		return fmt.Errorf("authorization timed out")
	}
}

func fetchOwnChannel(ctx context.Context, source oauth2.TokenSource) (*model.YouTubeChannel, error) {
	svc, err := youtube.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}

	resp, err := svc.Channels.List([]string{"snippet"}).Mine(true).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to look up channel: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("the authorized account has no YouTube channel")
	}

	item := resp.Items[0]
	channel := &model.YouTubeChannel{
		ChannelID: item.Id,
		Title:     item.Snippet.Title,
	}
	if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
		channel.Thumbnail = item.Snippet.Thumbnails.Default.Url
	}
	return channel, nil
}

func runConnectFacebook(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, err := app.BuildService(ctx, config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	var (
		pageID      string
		accessToken string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Page ID").
				Value(&pageID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("page id is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Page access token").
				EchoMode(huh.EchoModePassword).
				Value(&accessToken).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("access token is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	page, err := verifyFacebookPage(ctx, strings.TrimSpace(pageID), strings.TrimSpace(accessToken))
	if err != nil {
		return err
	}
	page.CreatedAt = time.Now().UTC()

	if err := svc.Store().Pages.Put(page); err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}

	fmt.Println(connectSuccessStyle.Render(fmt.Sprintf("✓ Connected Facebook page %q (%s)", page.Name, page.PageID)))
	return nil
}

// verifyFacebookPage looks the page up on the Graph API with the given
// token, which both validates the token and fills in the page name.
func verifyFacebookPage(ctx context.Context, pageID, accessToken string) (*model.FacebookPage, error) {
	client := httputil.NewRetryClient(&http.Client{Timeout: 30 * time.Second}, httputil.DefaultRetryConfig())

	endpoint := fmt.Sprintf("https://graph.facebook.com/v19.0/%s?fields=name,category&access_token=%s",
		url.PathEscape(pageID), url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build page lookup request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach the graph api: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("page lookup failed: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("page lookup failed with status %d", resp.StatusCode)
	}

	var info struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse page lookup response: %w", err)
	}

	return &model.FacebookPage{
		PageID:      pageID,
		Name:        info.Name,
		Category:    info.Category,
		AccessToken: accessToken,
	}, nil
}
