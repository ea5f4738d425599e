package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storyforge/internal/model"
	"storyforge/internal/store"
)

type fakeCreator struct {
	created []string
	failFor map[string]error
	seq     int
}

func (f *fakeCreator) CreateScheduled(_ context.Context, sched *model.Schedule) (*model.Story, error) {
	if err := f.failFor[sched.ID]; err != nil {
		return nil, err
	}
	f.seq++
	id := fmt.Sprintf("%s-story-%d", sched.ID, f.seq)
	f.created = append(f.created, id)
	return &model.Story{ID: id, Status: model.StatusPending}, nil
}

func newEvaluatorFixture(t *testing.T, schedules ...*model.Schedule) (*Evaluator, *fakeCreator, *Ledger) {
	t.Helper()
	dir := t.TempDir()

	schedStore := store.NewScheduleStore(dir)
	for _, sched := range schedules {
		if err := schedStore.Put(sched); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}

	ledger := NewLedger(dir)
	creator := &fakeCreator{failFor: make(map[string]error)}
	return NewEvaluator(schedStore, ledger, creator), creator, ledger
}

// Dhaka noon with one prior generation: quota ceil(6/2)=3, one used,
// this tick generates exactly 2 and a re-run the same minute refuses.
func TestTickDhakaScenario(t *testing.T) {
	sched := dhakaSchedule()
	eval, creator, ledger := newEvaluatorFixture(t, sched)

	noonDhaka := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	if err := ledger.Record(sched, 1, "2026-03-10", "earlier-story"); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	if created := eval.Tick(context.Background(), noonDhaka); created != 2 {
		t.Fatalf("Tick() created %d stories, want 2", created)
	}
	if len(creator.created) != 2 {
		t.Fatalf("creator invoked %d times, want 2", len(creator.created))
	}

	// Second tick within the same minute: slot still matches, ledger
	// refuses further generation.
	if created := eval.Tick(context.Background(), noonDhaka.Add(20*time.Second)); created != 0 {
		t.Errorf("second Tick() created %d stories, want 0", created)
	}
	if got := ledger.Generated(sched, 1, "2026-03-10"); len(got) != 3 {
		t.Errorf("ledger holds %d ids, want 3", len(got))
	}
}

func TestTickSkipsInactiveAndUnmatched(t *testing.T) {
	inactive := dhakaSchedule()
	inactive.ID = "inactive"
	inactive.Active = false

	offSlot := dhakaSchedule()
	offSlot.ID = "off-slot"

	eval, creator, _ := newEvaluatorFixture(t, inactive, offSlot)

	// 09:30 Dhaka matches neither 00:00 nor 12:00.
	now := time.Date(2026, 3, 10, 3, 30, 0, 0, time.UTC)
	if created := eval.Tick(context.Background(), now); created != 0 {
		t.Errorf("Tick() created %d stories, want 0", created)
	}
	if len(creator.created) != 0 {
		t.Errorf("creator invoked %d times, want 0", len(creator.created))
	}
}

// One schedule's generation failure must not block another schedule in
// the same tick.
func TestTickContinuesPastFailure(t *testing.T) {
	failing := dhakaSchedule()
	failing.ID = "failing"

	healthy := dhakaSchedule()
	healthy.ID = "healthy"
	healthy.CreatedAt = failing.CreatedAt.Add(time.Second)

	eval, creator, ledger := newEvaluatorFixture(t, failing, healthy)
	creator.failFor["failing"] = errors.New("generator unavailable")

	noonDhaka := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	if created := eval.Tick(context.Background(), noonDhaka); created != 3 {
		t.Fatalf("Tick() created %d stories, want 3 from healthy schedule", created)
	}

	// The failing schedule recorded nothing: its quota stays available
	// for a later tick.
	if got := ledger.Generated(failing, 1, "2026-03-10"); len(got) != 0 {
		t.Errorf("failing schedule recorded %d ids, want 0", len(got))
	}
	if got := ledger.Generated(healthy, 1, "2026-03-10"); len(got) != 3 {
		t.Errorf("healthy schedule recorded %d ids, want 3", len(got))
	}
}
