package schedule

import (
	"context"
	"log/slog"
	"time"

	"storyforge/internal/model"
	"storyforge/internal/store"
)

// StoryCreator produces a durable pending story for a schedule. The
// pipeline dispatcher implements this; the evaluator only needs the id
// back for ledger bookkeeping.
type StoryCreator interface {
	CreateScheduled(ctx context.Context, schedule *model.Schedule) (*model.Story, error)
}

// Evaluator walks active schedules once per tick, matches the current
// slot, and generates up to the slot's remaining quota. One schedule's
// failure never aborts the tick.
type Evaluator struct {
	schedules *store.ScheduleStore
	ledger    *Ledger
	creator   StoryCreator
}

func NewEvaluator(schedules *store.ScheduleStore, ledger *Ledger, creator StoryCreator) *Evaluator {
	return &Evaluator{
		schedules: schedules,
		ledger:    ledger,
		creator:   creator,
	}
}

// Tick evaluates every active schedule against nowUTC and returns the
// number of stories created. Safe to invoke every minute: the ledger
// caps generation per slot regardless of how often a slot matches.
func (e *Evaluator) Tick(ctx context.Context, nowUTC time.Time) int {
	created := 0

	for _, sched := range e.schedules.Active() {
		slot, ok := SlotAt(sched, nowUTC)
		if !ok {
			continue
		}

		date, err := LocalDate(sched.Timezone, nowUTC)
		if err != nil {
			slog.Error("Schedule has invalid timezone", "schedule", sched.Name, "timezone", sched.Timezone, "error", err)
			continue
		}

		remaining := e.ledger.RemainingQuota(sched, slot, date)
		if remaining <= 0 {
			slog.Info("Slot already generated", "schedule", sched.Name, "slot", sched.UploadTimes[slot], "quota", sched.SlotQuota())
			continue
		}

		slog.Info("Slot due", "schedule", sched.Name, "slot", sched.UploadTimes[slot], "generating", remaining)

		for i := 0; i < remaining; i++ {
			story, err := e.creator.CreateScheduled(ctx, sched)
			if err != nil {
				slog.Error("Story generation failed", "schedule", sched.Name, "error", err)
				continue
			}

			// The story row is durable before the ledger learns about
			// it. A crash in between leaves quota available for the
			// next tick (duplicate generation accepted over a lost
			// slot).
			if err := e.ledger.Record(sched, slot, date, story.ID); err != nil {
				slog.Warn("Ledger record refused", "schedule", sched.Name, "story", story.ID, "error", err)
				break
			}
			created++
		}
	}

	return created
}
