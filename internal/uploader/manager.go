package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storyforge/internal/model"
	"storyforge/internal/store"
)

// Manager runs the per-destination upload state machine over stored
// stories. It claims an attempt atomically before touching the
// network, so two concurrent callers can never open two sessions for
// the same story and destination.
type Manager struct {
	stories     *store.StoryStore
	newYouTube  func(channelID string) Destination
	newFacebook func(pageID string) Destination
	submit      func(task func())
}

func NewManager(stories *store.StoryStore, newYouTube, newFacebook func(string) Destination, submit func(func())) *Manager {
	if submit == nil {
		submit = func(task func()) { go task() }
	}
	return &Manager{
		stories:     stories,
		newYouTube:  newYouTube,
		newFacebook: newFacebook,
		submit:      submit,
	}
}

// Dispatch queues uploads for every destination the story is bound
// to. It returns immediately; outcomes land on the story record.
func (m *Manager) Dispatch(storyID string) {
	m.submit(func() {
		if err := m.UploadAll(context.Background(), storyID); err != nil {
			slog.Error("Upload failed", "story", storyID, "error", err)
		}
	})
}

// UploadAll uploads to each destination configured on the story. One
// destination's failure does not stop the other.
func (m *Manager) UploadAll(ctx context.Context, storyID string) error {
	story, err := m.stories.Get(storyID)
	if err != nil {
		return err
	}

	var errs []error
	if story.YouTubeChannelID != "" {
		if err := m.Upload(ctx, storyID, PlatformYouTube); err != nil {
			errs = append(errs, err)
		}
	}
	if story.FacebookPageID != "" {
		if err := m.Upload(ctx, storyID, PlatformFacebook); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Upload runs one destination's protocol for the story. Preconditions
// are a completed render and a free attempt slot; an attempt already
// uploading, completed or scheduled is left alone. A failed attempt
// may be retried and always starts a fresh session.
func (m *Manager) Upload(ctx context.Context, storyID, platform string) error {
	claimed := false
	story, err := m.stories.Update(storyID, func(s *model.Story) {
		if s.Status != model.StatusCompleted {
			return
		}
		att := attemptFor(s, platform)
		if att.Status == model.UploadUploading || att.Status == model.UploadCompleted || att.Status == model.UploadScheduled {
			return
		}
		att.Status = model.UploadUploading
		att.Error = ""
		att.VideoID = ""
		claimed = true
	})
	if err != nil {
		return err
	}
	if !claimed {
		if story.Status != model.StatusCompleted {
			return fmt.Errorf("story %s is not rendered, status is %s", storyID, story.Status)
		}
		slog.Debug("Upload already handled", "story", storyID, "platform", platform, "status", attemptFor(story, platform).Status)
		return nil
	}

	req, dest, err := m.prepare(story, platform)
	if err != nil {
		return m.fail(storyID, platform, err)
	}

	slog.Info("Starting upload", "story", storyID, "platform", platform)
	result, err := dest.Upload(ctx, req)
	if err != nil {
		return m.fail(storyID, platform, err)
	}

	status := model.UploadCompleted
	if result.Scheduled {
		status = model.UploadScheduled
	}
	_, err = m.stories.Update(storyID, func(s *model.Story) {
		att := attemptFor(s, platform)
		att.Status = status
		att.VideoID = result.VideoID
	})
	if err != nil {
		return err
	}
	slog.Info("Upload finished", "story", storyID, "platform", platform, "video_id", result.VideoID, "status", status)
	return nil
}

func (m *Manager) prepare(story *model.Story, platform string) (Request, Destination, error) {
	req := Request{
		FilePath:    story.VideoPath,
		Title:       story.Title,
		Description: story.YouTubeDescription,
		Tags:        story.YouTubeTags,
	}
	if story.ScheduledFor != nil && story.ScheduledFor.After(time.Now()) {
		req.PublishAt = story.ScheduledFor
	}

	var dest Destination
	switch platform {
	case PlatformYouTube:
		if story.YouTubeTitle != "" {
			req.Title = story.YouTubeTitle
		}
		if story.YouTubeChannelID == "" {
			return req, nil, errors.New("story has no youtube channel")
		}
		dest = m.newYouTube(story.YouTubeChannelID)
	case PlatformFacebook:
		if story.FacebookPageID == "" {
			return req, nil, errors.New("story has no facebook page")
		}
		dest = m.newFacebook(story.FacebookPageID)
	default:
		return req, nil, fmt.Errorf("unknown platform %q", platform)
	}

	if req.Title == "" {
		return req, nil, errors.New("story has no title for upload")
	}
	if req.FilePath == "" {
		return req, nil, errors.New("story has no rendered video")
	}
	return req, dest, nil
}

func (m *Manager) fail(storyID, platform string, cause error) error {
	_, err := m.stories.Update(storyID, func(s *model.Story) {
		att := attemptFor(s, platform)
		att.Status = model.UploadFailed
		att.Error = cause.Error()
	})
	if err != nil {
		slog.Error("Failed to record upload error", "story", storyID, "error", err)
	}
	return fmt.Errorf("upload story %s to %s: %w", storyID, platform, cause)
}

// SweepScheduled advances stories with a publish time that has
// arrived: uploads that never started are dispatched, and attempts
// the platform is now publishing flip from scheduled to completed.
// The platform holds the publish clock, so no second publish call is
// made here.
func (m *Manager) SweepScheduled(ctx context.Context, now time.Time) (started, published int) {
	due := m.stories.Filter(func(s *model.Story) bool {
		return s.ScheduledFor != nil && !s.ScheduledFor.After(now)
	})

	for _, story := range due {
		for _, platform := range []string{PlatformYouTube, PlatformFacebook} {
			if destinationID(story, platform) == "" {
				continue
			}
			if attemptFor(story, platform).Status != model.UploadScheduled {
				continue
			}
			_, err := m.stories.Update(story.ID, func(s *model.Story) {
				attemptFor(s, platform).Status = model.UploadCompleted
			})
			if err != nil {
				slog.Error("Failed to mark scheduled upload published", "story", story.ID, "error", err)
				continue
			}
			slog.Info("Scheduled upload is now live", "story", story.ID, "platform", platform)
			published++
		}

		if story.Status != model.StatusCompleted {
			continue
		}
		pending := false
		for _, platform := range []string{PlatformYouTube, PlatformFacebook} {
			if destinationID(story, platform) != "" && attemptFor(story, platform).Status == model.UploadNotStarted {
				pending = true
			}
		}
		if pending {
			slog.Info("Dispatching overdue scheduled upload", "story", story.ID)
			m.Dispatch(story.ID)
			started++
		}
	}
	return started, published
}

func attemptFor(s *model.Story, platform string) *model.UploadAttempt {
	if platform == PlatformYouTube {
		return &s.YouTube
	}
	return &s.Facebook
}

func destinationID(s *model.Story, platform string) string {
	if platform == PlatformYouTube {
		return s.YouTubeChannelID
	}
	return s.FacebookPageID
}
