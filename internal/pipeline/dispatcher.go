// Package pipeline drives a story from generated script to rendered
// video: generate, persist, storyboard, render, then hand off to the
// upload layer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"storyforge/internal/generator"
	"storyforge/internal/model"
	"storyforge/internal/renderer"
	"storyforge/internal/store"
	"storyforge/internal/storyboard"
)

// ErrPastPublishTime rejects a requested publish time that has
// already passed. Publish now instead of scheduling.
var ErrPastPublishTime = errors.New("scheduled publish time is in the past")

// Publisher receives finished stories for upload. Dispatch must not
// block; the implementation queues the work.
type Publisher interface {
	Dispatch(storyID string)
}

// CreateRequest describes an ad hoc story. Zero-value destination ids
// mean the story is generated but never auto-uploaded.
type CreateRequest struct {
	Topic            string
	Style            string
	TalkingStyle     string
	AspectRatio      string
	YouTubeChannelID string
	FacebookPageID   string
	ScheduledFor     *time.Time
}

// Dispatcher owns the generate-persist-render lifecycle of a story.
type Dispatcher struct {
	stories   *store.StoryStore
	gen       generator.Generator
	rend      renderer.Renderer
	publisher Publisher
	outputDir string
	submit    func(task func())
}

func NewDispatcher(stories *store.StoryStore, gen generator.Generator, rend renderer.Renderer, publisher Publisher, outputDir string, submit func(func())) *Dispatcher {
	return &Dispatcher{
		stories:   stories,
		gen:       gen,
		rend:      rend,
		publisher: publisher,
		outputDir: outputDir,
		submit:    submit,
	}
}

// Create generates a draft and persists it as a pending story. The
// story is durable before this returns; rendering happens in Process.
func (d *Dispatcher) Create(ctx context.Context, req CreateRequest) (*model.Story, error) {
	if req.ScheduledFor != nil && req.ScheduledFor.Before(time.Now()) {
		return nil, ErrPastPublishTime
	}

	draft, err := d.gen.Generate(ctx, generator.Request{
		Topic:        req.Topic,
		Style:        req.Style,
		AspectRatio:  req.AspectRatio,
		TalkingStyle: req.TalkingStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("generate story: %w", err)
	}

	story := &model.Story{
		ID:                 uuid.NewString(),
		Title:              draft.Title,
		Content:            draft.Content,
		Style:              req.Style,
		TalkingStyle:       req.TalkingStyle,
		AspectRatio:        req.AspectRatio,
		Status:             model.StatusPending,
		ScheduledFor:       req.ScheduledFor,
		YouTubeChannelID:   req.YouTubeChannelID,
		FacebookPageID:     req.FacebookPageID,
		YouTubeTitle:       draft.YouTubeTitle,
		YouTubeDescription: draft.YouTubeDescription,
		YouTubeTags:        draft.YouTubeTags,
		CreatedAt:          time.Now().UTC(),
	}
	if err := d.stories.Put(story); err != nil {
		return nil, fmt.Errorf("persist story: %w", err)
	}
	slog.Info("Story created", "id", story.ID, "title", story.Title, "style", story.Style)
	return story, nil
}

// CreateScheduled creates one story on behalf of a schedule, tags it
// so a successful render auto-publishes to the schedule's
// destinations, and queues the render work in the background.
func (d *Dispatcher) CreateScheduled(ctx context.Context, schedule *model.Schedule) (*model.Story, error) {
	story, err := d.Create(ctx, CreateRequest{
		Topic:            schedule.PromptTemplate,
		Style:            schedule.Style,
		TalkingStyle:     schedule.TalkingStyle,
		AspectRatio:      schedule.AspectRatio,
		YouTubeChannelID: schedule.YouTubeChannelID,
		FacebookPageID:   schedule.FacebookPageID,
	})
	if err != nil {
		return nil, err
	}
	story, err = d.stories.Update(story.ID, func(s *model.Story) {
		s.FromScheduler = true
	})
	if err != nil {
		return nil, err
	}

	if d.submit != nil {
		storyID := story.ID
		d.submit(func() {
			if err := d.Process(context.Background(), storyID); err != nil {
				slog.Error("Background processing failed", "story", storyID, "error", err)
			}
		})
	}
	return story, nil
}

// Process renders a pending or failed story end to end. Any existing
// scenes are replaced so a reprocessed story always reflects its
// current content. On success the story is completed; scheduler
// stories with destinations are handed to the publisher.
func (d *Dispatcher) Process(ctx context.Context, storyID string) error {
	// Claim the processing transition while the store lock is held, so
	// a queued background render racing a manual one cannot both pass.
	claimed := false
	story, err := d.stories.Update(storyID, func(s *model.Story) {
		if s.Status == model.StatusProcessing {
			return
		}
		s.Status = model.StatusProcessing
		s.Error = ""
		claimed = true
	})
	if err != nil {
		return err
	}
	if !claimed {
		return fmt.Errorf("story %s is already processing", storyID)
	}

	scenes := storyboard.Split(story.Content, story.Style)
	if len(scenes) == 0 {
		_, _ = d.stories.Update(storyID, func(s *model.Story) {
			s.Status = model.StatusFailed
			s.Error = "no usable scenes in story content"
		})
		return fmt.Errorf("story %s has no usable scenes", storyID)
	}

	modelScenes := make([]model.Scene, len(scenes))
	renderScenes := make([]renderer.Scene, len(scenes))
	for i, sc := range scenes {
		modelScenes[i] = model.Scene{Order: i, Narration: sc.Narration, ImagePrompt: sc.ImagePrompt}
		renderScenes[i] = renderer.Scene{ID: i, Narration: sc.Narration, ImagePrompt: sc.ImagePrompt}
	}

	story, err = d.stories.Update(storyID, func(s *model.Story) {
		s.Scenes = modelScenes
	})
	if err != nil {
		return err
	}
	slog.Info("Rendering story", "id", storyID, "scenes", len(renderScenes))

	videoPath, err := d.rend.Render(ctx, renderer.Input{
		StoryID:     storyID,
		Style:       story.Style,
		Scenes:      renderScenes,
		AspectRatio: story.AspectRatio,
		OutputDir:   filepath.Join(d.outputDir, storyID),
	})
	if err != nil {
		_, _ = d.stories.Update(storyID, func(s *model.Story) {
			s.Status = model.StatusFailed
			s.Error = err.Error()
		})
		return fmt.Errorf("render story %s: %w", storyID, err)
	}

	story, err = d.stories.Update(storyID, func(s *model.Story) {
		s.Status = model.StatusCompleted
		s.VideoPath = videoPath
	})
	if err != nil {
		return err
	}
	slog.Info("Story completed", "id", storyID, "video", videoPath)

	if story.FromScheduler && d.publisher != nil &&
		(story.YouTubeChannelID != "" || story.FacebookPageID != "") {
		d.publisher.Dispatch(storyID)
	}
	return nil
}

// Regenerate resets a story for another run. With fresh content a new
// draft replaces the script and metadata; otherwise only the render
// state is cleared.
func (d *Dispatcher) Regenerate(ctx context.Context, storyID string, freshContent bool) (*model.Story, error) {
	story, err := d.stories.Get(storyID)
	if err != nil {
		return nil, err
	}
	if story.Status == model.StatusProcessing {
		return nil, fmt.Errorf("story %s is already processing", storyID)
	}

	var draft *generator.Draft
	if freshContent {
		draft, err = d.gen.Generate(ctx, generator.Request{
			Style:        story.Style,
			AspectRatio:  story.AspectRatio,
			TalkingStyle: story.TalkingStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("regenerate story: %w", err)
		}
	}

	return d.stories.Update(storyID, func(s *model.Story) {
		s.Status = model.StatusPending
		s.Error = ""
		s.VideoPath = ""
		s.Scenes = nil
		s.YouTube = model.UploadAttempt{}
		s.Facebook = model.UploadAttempt{}
		if draft != nil {
			s.Title = draft.Title
			s.Content = draft.Content
			s.YouTubeTitle = draft.YouTubeTitle
			s.YouTubeDescription = draft.YouTubeDescription
			s.YouTubeTags = draft.YouTubeTags
		}
	})
}
