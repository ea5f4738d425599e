package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"storyforge/internal/token"
	"storyforge/pkg/httputil"
)

const defaultGraphURL = "https://graph.facebook.com/v19.0"

// FacebookDestination publishes Reels to one page via the Graph API's
// three phase protocol: start a session, stream the file to the
// session's upload URL in chunks, then finish with the metadata and
// publish state.
type FacebookDestination struct {
	tokens    *token.Manager
	pageID    string
	chunkSize int
	client    *httputil.RetryClient
	graphURL  string
}

func NewFacebookDestination(tokens *token.Manager, pageID string, chunkSize int) *FacebookDestination {
	return &FacebookDestination{
		tokens:    tokens,
		pageID:    pageID,
		chunkSize: chunkSize,
		client:    httputil.NewRetryClient(nil, httputil.DefaultRetryConfig()),
		graphURL:  defaultGraphURL,
	}
}

func (d *FacebookDestination) Name() string { return PlatformFacebook }

type reelSession struct {
	VideoID   string `json:"video_id"`
	UploadURL string `json:"upload_url"`
}

func (d *FacebookDestination) Upload(ctx context.Context, req Request) (*Result, error) {
	accessToken, err := d.tokens.PageToken(ctx, d.pageID)
	if err != nil {
		return nil, err
	}

	session, err := d.startSession(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("start reel session: %w", err)
	}
	slog.Debug("Reel session opened", "page", d.pageID, "video_id", session.VideoID)

	if err := d.transfer(ctx, session.UploadURL, accessToken, req.FilePath); err != nil {
		return nil, fmt.Errorf("transfer reel: %w", err)
	}

	scheduled := req.PublishAt != nil
	if err := d.finish(ctx, accessToken, session.VideoID, req); err != nil {
		return nil, fmt.Errorf("publish reel: %w", err)
	}
	slog.Info("Reel published", "page", d.pageID, "video_id", session.VideoID, "scheduled", scheduled)
	return &Result{VideoID: session.VideoID, Scheduled: scheduled}, nil
}

func (d *FacebookDestination) startSession(ctx context.Context, accessToken string) (*reelSession, error) {
	form := url.Values{
		"upload_phase": {"start"},
		"access_token": {accessToken},
	}
	body, err := d.graphPost(ctx, fmt.Sprintf("%s/%s/video_reels", d.graphURL, d.pageID), form)
	if err != nil {
		return nil, err
	}

	var session reelSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}
	if session.VideoID == "" || session.UploadURL == "" {
		return nil, fmt.Errorf("incomplete session response: %s", body)
	}
	return &session, nil
}

// transfer streams the file to the session upload URL chunk by chunk.
// Each chunk declares its byte offset, so a chunk the server already
// acknowledged is never resent and a retried chunk lands in place.
func (d *FacebookDestination) transfer(ctx context.Context, uploadURL, accessToken, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat video file: %w", err)
	}
	fileSize := info.Size()

	chunk := make([]byte, d.chunkSize)
	var offset int64
	for offset < fileSize {
		n, err := io.ReadFull(f, chunk)
		if err != nil && err != io.ErrUnexpectedEOF {
			return fmt.Errorf("read chunk at offset %d: %w", offset, err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(chunk[:n]))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Authorization", "OAuth "+accessToken)
		httpReq.Header.Set("offset", strconv.FormatInt(offset, 10))
		httpReq.Header.Set("file_size", strconv.FormatInt(fileSize, 10))

		resp, err := d.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("upload chunk at offset %d: %w", offset, err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("upload chunk at offset %d: %s", offset, graphErrorMessage(respBody))
		}
		offset += int64(n)
	}
	return nil
}

func (d *FacebookDestination) finish(ctx context.Context, accessToken, videoID string, req Request) error {
	description := req.Title
	if req.Description != "" {
		description = req.Description
	}
	form := url.Values{
		"upload_phase": {"finish"},
		"video_id":     {videoID},
		"video_state":  {"PUBLISHED"},
		"description":  {description},
		"access_token": {accessToken},
	}
	if req.PublishAt != nil {
		form.Set("video_state", "SCHEDULED")
		form.Set("scheduled_publish_time", strconv.FormatInt(req.PublishAt.Unix(), 10))
	}
	_, err := d.graphPost(ctx, fmt.Sprintf("%s/%s/video_reels", d.graphURL, d.pageID), form)
	return err
}

func (d *FacebookDestination) graphPost(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s", graphErrorMessage(body))
	}
	return body, nil
}

// graphErrorMessage extracts the message from a Graph API error body,
// falling back to the raw body when it is not the usual shape.
func graphErrorMessage(body []byte) string {
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}
	return string(body)
}
