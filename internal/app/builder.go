package app

import (
	"context"
	"fmt"
	"log/slog"

	"storyforge/internal/generator"
	"storyforge/internal/pipeline"
	"storyforge/internal/renderer"
	"storyforge/internal/schedule"
	"storyforge/internal/storage"
	"storyforge/internal/store"
	"storyforge/internal/token"
	"storyforge/internal/uploader"
	"storyforge/internal/worker"
	"storyforge/pkg/config"
)

// BuildService assembles the full service graph from configuration.
func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if err := cfg.ResolveSecrets(ctx); err != nil {
		return nil, err
	}

	stores, err := store.Open(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return nil, err
	}

	rend := renderer.NewWorker(cfg.Render.Command, cfg.Render.WorkDir, cfg.RenderTimeout())

	oauth := token.OAuthConfig(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTube.RedirectURL)
	tokens := token.NewManager(stores.Channels, stores.Pages, oauth)

	pool := worker.NewPool(cfg.Upload.Workers, cfg.Upload.QueueSize)
	submit := func(task func()) {
		if !pool.Submit(task) {
			slog.Warn("Background task rejected, will be retried by a later tick")
		}
	}

	uploads := uploader.NewManager(stores.Stories,
		func(channelID string) uploader.Destination {
			return uploader.NewYouTubeDestination(tokens, channelID, cfg.ChunkSize())
		},
		func(pageID string) uploader.Destination {
			return uploader.NewFacebookDestination(tokens, pageID, cfg.ChunkSize())
		},
		submit,
	)

	dispatcher := pipeline.NewDispatcher(stores.Stories, gen, rend, uploads, cfg.Data.OutputDir, submit)

	ledger := schedule.NewLedger(cfg.Data.Dir)
	evaluator := schedule.NewEvaluator(stores.Schedules, ledger, dispatcher)

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewService(ServiceOptions{
		Config:     cfg,
		Store:      stores,
		Ledger:     ledger,
		Evaluator:  evaluator,
		Dispatcher: dispatcher,
		Uploads:    uploads,
		Tokens:     tokens,
		Pool:       pool,
		Archive:    archive,
	}), nil
}

func buildGenerator(cfg *config.Config) (generator.Generator, error) {
	prompts := generator.LoadPromptsFrom(cfg.Generator.PromptsPath)

	switch cfg.Generator.Provider {
	case "groq":
		return generator.NewGroqGenerator(cfg.GroqAPIKey, cfg.Generator.GroqModel, prompts)
	case "deepseek":
		return generator.NewDeepSeekGenerator(cfg.DeepSeekAPIKey, cfg.Generator.DeepSeekModel, prompts), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}
}

func buildArchive(ctx context.Context, cfg *config.Config) (storage.Archive, error) {
	if cfg.GCS.Enabled && cfg.GCSBucket != "" {
		return storage.NewGCSArchive(ctx, cfg.GCSBucket, cfg.GCS.VideoPrefix)
	}
	return storage.NewLocalArchive(cfg.Data.ArchiveDir), nil
}
