// Package app wires the stores, scheduler, pipeline and upload layers
// into one service the commands operate on.
package app

import (
	"context"
	"log/slog"
	"time"

	"storyforge/internal/pipeline"
	"storyforge/internal/schedule"
	"storyforge/internal/storage"
	"storyforge/internal/store"
	"storyforge/internal/token"
	"storyforge/internal/uploader"
	"storyforge/internal/worker"
	"storyforge/pkg/config"
)

type Service struct {
	cfg        *config.Config
	store      *store.Store
	ledger     *schedule.Ledger
	evaluator  *schedule.Evaluator
	dispatcher *pipeline.Dispatcher
	uploads    *uploader.Manager
	tokens     *token.Manager
	pool       *worker.Pool
	archive    storage.Archive
}

type ServiceOptions struct {
	Config     *config.Config
	Store      *store.Store
	Ledger     *schedule.Ledger
	Evaluator  *schedule.Evaluator
	Dispatcher *pipeline.Dispatcher
	Uploads    *uploader.Manager
	Tokens     *token.Manager
	Pool       *worker.Pool
	Archive    storage.Archive
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:        opts.Config,
		store:      opts.Store,
		ledger:     opts.Ledger,
		evaluator:  opts.Evaluator,
		dispatcher: opts.Dispatcher,
		uploads:    opts.Uploads,
		tokens:     opts.Tokens,
		pool:       opts.Pool,
		archive:    opts.Archive,
	}
}

func (s *Service) Config() *config.Config           { return s.cfg }
func (s *Service) Store() *store.Store              { return s.store }
func (s *Service) Ledger() *schedule.Ledger         { return s.ledger }
func (s *Service) Dispatcher() *pipeline.Dispatcher { return s.dispatcher }
func (s *Service) Uploads() *uploader.Manager       { return s.uploads }
func (s *Service) Tokens() *token.Manager           { return s.tokens }

// Tick runs one scheduling evaluation plus the publish-due sweep.
// Safe to call every minute; all heavy work lands on the pool.
func (s *Service) Tick(ctx context.Context, now time.Time) {
	created := s.evaluator.Tick(ctx, now)
	started, published := s.uploads.SweepScheduled(ctx, now)
	if created > 0 || started > 0 || published > 0 {
		slog.Info("Tick finished", "created", created, "uploads_started", started, "published", published)
	}
}

// Close drains background work.
func (s *Service) Close() {
	if s.pool != nil {
		s.pool.Stop()
	}
}
