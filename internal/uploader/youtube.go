package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"

	"storyforge/internal/token"
)

const youtubeCategoryID = "22"

// YouTubeDestination uploads to one channel through the Data API's
// resumable protocol. The chunk size bounds memory per transfer and
// lets an interrupted transfer resume from the last acknowledged
// chunk instead of byte zero.
type YouTubeDestination struct {
	tokens    *token.Manager
	channelID string
	chunkSize int

	// endpoint overrides the API base URL in tests.
	endpoint string
}

func NewYouTubeDestination(tokens *token.Manager, channelID string, chunkSize int) *YouTubeDestination {
	return &YouTubeDestination{
		tokens:    tokens,
		channelID: channelID,
		chunkSize: chunkSize,
	}
}

func (d *YouTubeDestination) Name() string { return PlatformYouTube }

func (d *YouTubeDestination) Upload(ctx context.Context, req Request) (*Result, error) {
	tok, err := d.tokens.ChannelToken(ctx, d.channelID)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithTokenSource(oauth2.StaticTokenSource(tok))}
	if d.endpoint != "" {
		opts = append(opts, option.WithEndpoint(d.endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube client: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  youtubeCategoryID,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: "public"},
	}
	scheduled := req.PublishAt != nil
	if scheduled {
		video.Status.PrivacyStatus = "private"
		video.Status.PublishAt = req.PublishAt.UTC().Format(time.RFC3339)
	}

	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = f.Close() }()

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f, googleapi.ChunkSize(d.chunkSize))

	slog.Info("Uploading to YouTube", "channel", d.channelID, "title", req.Title, "scheduled", scheduled)
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, errors.New(youtubeErrorMessage(err))
	}
	return &Result{VideoID: resp.Id, Scheduled: scheduled}, nil
}

// youtubeErrorMessage turns an API error into something an operator
// can act on. The daily upload cap gets its own wording because it is
// by far the most common failure on new channels.
func youtubeErrorMessage(err error) string {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	for _, e := range apiErr.Errors {
		if e.Reason == "uploadLimitExceeded" {
			return "YouTube upload limit reached for this channel, try again after 24 hours"
		}
	}
	if msg := extractAPIMessage(apiErr.Body); msg != "" {
		return msg
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// extractAPIMessage pulls the message field out of a structured error
// body, tolerating both {"error":{"message":...}} and a flat message.
func extractAPIMessage(body string) string {
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &wrapped); err == nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}
	var flat struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &flat); err == nil && flat.Message != "" {
		return flat.Message
	}
	return ""
}
