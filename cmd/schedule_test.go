package cmd

import (
	"reflect"
	"testing"
	"time"

	"storyforge/internal/model"
	"storyforge/internal/schedule"
)

func TestParseSlotsNormalizesPadding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"zero padded kept", "09:00, 18:00", []string{"09:00", "18:00"}},
		{"unpadded hour", "9:00", []string{"09:00"}},
		{"unpadded minute", "18:5", []string{"18:05"}},
		{"blanks dropped", " , 12:00, ", []string{"12:00"}},
		{"invalid left for validation", "noon", []string{"noon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSlots(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSlots(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateSlots(t *testing.T) {
	if err := validateSlots("9:00, 18:30"); err != nil {
		t.Errorf("validateSlots() error: %v", err)
	}
	if err := validateSlots(""); err == nil {
		t.Error("expected an error for empty input")
	}
	if err := validateSlots("25:00"); err == nil {
		t.Error("expected an error for an out of range hour")
	}
}

// A slot typed without the leading zero must still fire at its local
// time once stored.
func TestParsedSlotsMatchAtLocalTime(t *testing.T) {
	sched := &model.Schedule{
		ID:           "sched-1",
		VideosPerDay: 1,
		Timezone:     "UTC",
		UploadTimes:  parseSlots("9:00"),
		Active:       true,
	}

	now := time.Date(2026, 3, 14, 9, 0, 30, 0, time.UTC)
	slot, ok := schedule.SlotAt(sched, now)
	if !ok {
		t.Fatalf("SlotAt() found no slot at 09:00 for stored times %v", sched.UploadTimes)
	}
	if slot != 0 {
		t.Errorf("SlotAt() = %d, want 0", slot)
	}
}
