package schedule

import (
	"fmt"
	"path/filepath"
	"sync"

	"storyforge/internal/model"
	"storyforge/internal/store"
)

const ledgerFile = "ledger.json"

// ErrQuotaExhausted is returned by Record when a slot already holds its
// full quota of story ids.
var ErrQuotaExhausted = fmt.Errorf("slot quota exhausted")

type ledgerEntry struct {
	ScheduleID string   `json:"schedule_id"`
	Timezone   string   `json:"timezone"`
	Date       string   `json:"date"`
	Slot       int      `json:"slot"`
	StoryIDs   []string `json:"story_ids"`
}

// Ledger is the durable record of how many generations have already
// happened for a (schedule, timezone, local date, slot) key. The clock
// may match the same slot on every evaluator run within a minute; the
// ledger, not the clock, is what prevents duplicate generation.
type Ledger struct {
	mu       sync.Mutex
	dataFile string
	entries  map[string]*ledgerEntry
}

func NewLedger(dataDir string) *Ledger {
	l := &Ledger{
		dataFile: filepath.Join(dataDir, ledgerFile),
		entries:  make(map[string]*ledgerEntry),
	}
	store.LoadJSON(l.dataFile, &l.entries)
	return l
}

func ledgerKey(scheduleID, timezone, date string, slot int) string {
	return fmt.Sprintf("%s_%s_%s_slot_%d", scheduleID, timezone, date, slot)
}

// RemainingQuota is the slot's quota minus the generations already
// recorded for the key. Never negative.
func (l *Ledger) RemainingQuota(schedule *model.Schedule, slot int, date string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	quota := schedule.SlotQuota()
	key := ledgerKey(schedule.ID, schedule.Timezone, date, slot)
	if entry, ok := l.entries[key]; ok {
		quota -= len(entry.StoryIDs)
	}
	if quota < 0 {
		return 0
	}
	return quota
}

// Record appends storyID to the key's entry. Recording the same story
// id twice is a no-op, and appending past the slot quota fails with
// ErrQuotaExhausted, so at-least-once invocation of the evaluator tick
// cannot overrun the slot.
func (l *Ledger) Record(schedule *model.Schedule, slot int, date, storyID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey(schedule.ID, schedule.Timezone, date, slot)
	entry, ok := l.entries[key]
	if !ok {
		entry = &ledgerEntry{
			ScheduleID: schedule.ID,
			Timezone:   schedule.Timezone,
			Date:       date,
			Slot:       slot,
		}
		l.entries[key] = entry
	}

	for _, id := range entry.StoryIDs {
		if id == storyID {
			return nil
		}
	}

	if len(entry.StoryIDs) >= schedule.SlotQuota() {
		return ErrQuotaExhausted
	}

	entry.StoryIDs = append(entry.StoryIDs, storyID)
	return store.SaveJSON(l.dataFile, l.entries)
}

// Generated returns the story ids recorded for the key.
func (l *Ledger) Generated(schedule *model.Schedule, slot int, date string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey(schedule.ID, schedule.Timezone, date, slot)
	entry, ok := l.entries[key]
	if !ok {
		return nil
	}
	ids := make([]string, len(entry.StoryIDs))
	copy(ids, entry.StoryIDs)
	return ids
}

// Prune drops entries dated strictly before cutoff (YYYY-MM-DD string
// comparison) and reports how many were removed. Old keys are never
// queried again, so this is storage hygiene only.
func (l *Ledger) Prune(cutoff string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entry := range l.entries {
		if entry.Date < cutoff {
			delete(l.entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, store.SaveJSON(l.dataFile, l.entries)
}
