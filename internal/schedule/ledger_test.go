package schedule

import (
	"errors"
	"sync"
	"testing"

	"storyforge/internal/model"
)

func dhakaSchedule() *model.Schedule {
	return &model.Schedule{
		ID:           "sched-1",
		Name:         "dhaka",
		VideosPerDay: 6,
		Timezone:     "Asia/Dhaka",
		UploadTimes:  []string{"00:00", "12:00"},
		Active:       true,
	}
}

func TestLedgerRemainingQuota(t *testing.T) {
	ledger := NewLedger(t.TempDir())
	sched := dhakaSchedule()

	if got := ledger.RemainingQuota(sched, 1, "2026-03-10"); got != 3 {
		t.Fatalf("RemainingQuota() = %d, want 3", got)
	}

	if err := ledger.Record(sched, 1, "2026-03-10", "story-1"); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if got := ledger.RemainingQuota(sched, 1, "2026-03-10"); got != 2 {
		t.Errorf("RemainingQuota() after one record = %d, want 2", got)
	}

	// A different slot and a different date are independent keys.
	if got := ledger.RemainingQuota(sched, 0, "2026-03-10"); got != 3 {
		t.Errorf("RemainingQuota() other slot = %d, want 3", got)
	}
	if got := ledger.RemainingQuota(sched, 1, "2026-03-11"); got != 3 {
		t.Errorf("RemainingQuota() next day = %d, want 3", got)
	}
}

func TestLedgerRecordIdempotent(t *testing.T) {
	ledger := NewLedger(t.TempDir())
	sched := dhakaSchedule()

	for i := 0; i < 3; i++ {
		if err := ledger.Record(sched, 1, "2026-03-10", "story-1"); err != nil {
			t.Fatalf("Record() attempt %d error: %v", i, err)
		}
	}

	if got := ledger.Generated(sched, 1, "2026-03-10"); len(got) != 1 {
		t.Errorf("Generated() has %d entries, want 1", len(got))
	}
}

func TestLedgerQuotaNeverExceeded(t *testing.T) {
	ledger := NewLedger(t.TempDir())
	sched := dhakaSchedule() // quota 3 per slot

	ids := []string{"a", "b", "c", "d", "e"}
	var exhausted int
	for _, id := range ids {
		if err := ledger.Record(sched, 0, "2026-03-10", id); err != nil {
			if !errors.Is(err, ErrQuotaExhausted) {
				t.Fatalf("Record(%s) unexpected error: %v", id, err)
			}
			exhausted++
		}
	}

	if got := ledger.Generated(sched, 0, "2026-03-10"); len(got) != 3 {
		t.Errorf("Generated() has %d entries, want quota 3", len(got))
	}
	if exhausted != 2 {
		t.Errorf("got %d quota refusals, want 2", exhausted)
	}
}

func TestLedgerConcurrentRecord(t *testing.T) {
	ledger := NewLedger(t.TempDir())
	sched := dhakaSchedule()

	var wg sync.WaitGroup
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = ledger.Record(sched, 1, "2026-03-10", id)
		}(id)
	}
	wg.Wait()

	if got := ledger.Generated(sched, 1, "2026-03-10"); len(got) > sched.SlotQuota() {
		t.Errorf("Generated() has %d entries, exceeds quota %d", len(got), sched.SlotQuota())
	}
}

func TestLedgerSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	sched := dhakaSchedule()

	ledger := NewLedger(dir)
	if err := ledger.Record(sched, 1, "2026-03-10", "story-1"); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	reopened := NewLedger(dir)
	if got := reopened.RemainingQuota(sched, 1, "2026-03-10"); got != 2 {
		t.Errorf("RemainingQuota() after reopen = %d, want 2", got)
	}
}

func TestLedgerPrune(t *testing.T) {
	ledger := NewLedger(t.TempDir())
	sched := dhakaSchedule()

	_ = ledger.Record(sched, 0, "2026-03-01", "old")
	_ = ledger.Record(sched, 0, "2026-03-10", "recent")

	removed, err := ledger.Prune("2026-03-05")
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune() removed %d, want 1", removed)
	}
	if got := ledger.Generated(sched, 0, "2026-03-10"); len(got) != 1 {
		t.Errorf("recent entry lost after prune")
	}
}
