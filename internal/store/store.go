package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store bundles the durable collections kept under a single data
// directory, one JSON document per collection.
type Store struct {
	Schedules *ScheduleStore
	Stories   *StoryStore
	Channels  *ChannelStore
	Pages     *PageStore
}

func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return &Store{
		Schedules: NewScheduleStore(dataDir),
		Stories:   NewStoryStore(dataDir),
		Channels:  NewChannelStore(dataDir),
		Pages:     NewPageStore(dataDir),
	}, nil
}

// LoadJSON reads a JSON document into v, treating a missing or
// unreadable file as an empty collection.
func LoadJSON(path string, v any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, v)
}

// SaveJSON writes v as an indented JSON document via a temp-file
// rename, so readers never observe a half-written collection.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp, path)
}
