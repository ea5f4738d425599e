package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"storyforge/internal/model"
)

// Clean applies the retention policy: ledger entries older than the
// cutoff are pruned and stories past retention are removed, archiving
// their videos first. Stories still pending or processing are always
// kept.
func (s *Service) Clean(ctx context.Context, now time.Time) (removed int, err error) {
	cutoff := now.AddDate(0, 0, -s.cfg.Data.RetentionDays)

	pruned, err := s.ledger.Prune(cutoff.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		slog.Info("Pruned ledger entries", "count", pruned)
	}

	expired := s.store.Stories.Filter(func(st *model.Story) bool {
		if st.Status != model.StatusCompleted && st.Status != model.StatusFailed {
			return false
		}
		return st.CreatedAt.Before(cutoff)
	})

	for _, story := range expired {
		if story.VideoPath != "" {
			if s.archive != nil {
				ref, archiveErr := s.archive.Store(ctx, story.VideoPath, story.ID+filepath.Ext(story.VideoPath))
				if archiveErr != nil {
					if errors.Is(archiveErr, os.ErrNotExist) {
						slog.Debug("Video already gone, skipping archive", "story", story.ID)
					} else {
						slog.Error("Failed to archive video, keeping story", "story", story.ID, "error", archiveErr)
						continue
					}
				} else {
					slog.Info("Archived video", "story", story.ID, "ref", ref)
				}
			}
			if rmErr := os.Remove(story.VideoPath); rmErr != nil && !os.IsNotExist(rmErr) {
				slog.Warn("Failed to delete video file", "story", story.ID, "error", rmErr)
			}
			// Render output dir for the story, if it still exists.
			_ = os.RemoveAll(filepath.Join(s.cfg.Data.OutputDir, story.ID))
		}

		if delErr := s.store.Stories.Delete(story.ID); delErr != nil {
			slog.Error("Failed to delete story", "story", story.ID, "error", delErr)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("Retention cleanup finished", "removed", removed)
	}
	return removed, nil
}
