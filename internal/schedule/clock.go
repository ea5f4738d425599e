package schedule

import (
	"fmt"
	"time"

	"storyforge/internal/model"
)

// SlotAt reports whether nowUTC lands on one of the schedule's
// configured local times, minute resolution. If two slots share the
// same HH:MM the first wins. An unknown timezone never matches.
func SlotAt(schedule *model.Schedule, nowUTC time.Time) (int, bool) {
	loc, err := time.LoadLocation(schedule.Timezone)
	if err != nil {
		return 0, false
	}

	local := nowUTC.In(loc).Format("15:04")
	for i, slot := range schedule.UploadTimes {
		if slot == local {
			return i, true
		}
	}
	return 0, false
}

// LocalDate formats nowUTC as YYYY-MM-DD in the given timezone. Ledger
// keys are built from this, so "a new day" rolls over at local
// midnight, not UTC midnight.
func LocalDate(timezone string, nowUTC time.Time) (string, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "", fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return nowUTC.In(loc).Format("2006-01-02"), nil
}
