package schedule

import (
	"testing"
	"time"

	"storyforge/internal/model"
)

func TestSlotAt(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		slots    []string
		nowUTC   time.Time
		wantSlot int
		wantOK   bool
	}{
		{
			name:     "utcMatch",
			timezone: "UTC",
			slots:    []string{"09:00", "18:00"},
			nowUTC:   time.Date(2026, 3, 10, 18, 0, 30, 0, time.UTC),
			wantSlot: 1,
			wantOK:   true,
		},
		{
			name:     "utcNoMatch",
			timezone: "UTC",
			slots:    []string{"09:00", "18:00"},
			nowUTC:   time.Date(2026, 3, 10, 18, 1, 0, 0, time.UTC),
			wantOK:   false,
		},
		{
			name:     "dhakaLocalNoon",
			timezone: "Asia/Dhaka",
			slots:    []string{"00:00", "12:00"},
			nowUTC:   time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC), // 12:00 in Dhaka (UTC+6)
			wantSlot: 1,
			wantOK:   true,
		},
		{
			name:     "dhakaLocalMidnightCrossesDate",
			timezone: "Asia/Dhaka",
			slots:    []string{"00:00", "12:00"},
			nowUTC:   time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), // 00:00 on the 11th in Dhaka
			wantSlot: 0,
			wantOK:   true,
		},
		{
			name:     "duplicateSlotsFirstWins",
			timezone: "UTC",
			slots:    []string{"10:00", "10:00", "22:00"},
			nowUTC:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
			wantSlot: 0,
			wantOK:   true,
		},
		{
			name:     "invalidTimezoneNeverMatches",
			timezone: "Mars/Olympus",
			slots:    []string{"00:00"},
			nowUTC:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := &model.Schedule{Timezone: tt.timezone, UploadTimes: tt.slots}
			slot, ok := SlotAt(sched, tt.nowUTC)
			if ok != tt.wantOK {
				t.Fatalf("SlotAt() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && slot != tt.wantSlot {
				t.Errorf("SlotAt() slot = %d, want %d", slot, tt.wantSlot)
			}
		})
	}
}

func TestLocalDate(t *testing.T) {
	// 20:00 UTC on March 10 is already March 11 in Dhaka.
	date, err := LocalDate("Asia/Dhaka", time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("LocalDate() error: %v", err)
	}
	if date != "2026-03-11" {
		t.Errorf("LocalDate() = %q, want %q", date, "2026-03-11")
	}

	if _, err := LocalDate("Mars/Olympus", time.Now()); err == nil {
		t.Error("LocalDate() with invalid timezone should fail")
	}
}

func TestSlotQuota(t *testing.T) {
	tests := []struct {
		name         string
		videosPerDay int
		slots        int
		want         int
	}{
		{"evenSplit", 6, 2, 3},
		{"ceilingRoundsUp", 5, 2, 3},
		{"singleSlot", 4, 1, 4},
		{"moreSlotsThanVideos", 1, 3, 1},
		{"noSlots", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := make([]string, tt.slots)
			for i := range slots {
				slots[i] = "00:00"
			}
			sched := &model.Schedule{VideosPerDay: tt.videosPerDay, UploadTimes: slots}
			if got := sched.SlotQuota(); got != tt.want {
				t.Errorf("SlotQuota() = %d, want %d", got, tt.want)
			}
			// The per-slot quotas always cover videos_per_day.
			if tt.slots > 0 && sched.SlotQuota()*tt.slots < tt.videosPerDay {
				t.Errorf("quota %d over %d slots does not cover %d videos/day", sched.SlotQuota(), tt.slots, tt.videosPerDay)
			}
		})
	}
}
