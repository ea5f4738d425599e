package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"storyforge/internal/model"
)

const schedulesFile = "schedules.json"

type ScheduleStore struct {
	mu       sync.RWMutex
	dataFile string
	items    map[string]*model.Schedule
}

func NewScheduleStore(dataDir string) *ScheduleStore {
	s := &ScheduleStore{
		dataFile: filepath.Join(dataDir, schedulesFile),
		items:    make(map[string]*model.Schedule),
	}
	var schedules []*model.Schedule
	LoadJSON(s.dataFile, &schedules)
	for _, schedule := range schedules {
		s.items[schedule.ID] = schedule
	}
	return s
}

func (s *ScheduleStore) Get(id string) (*model.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("schedule %s not found", id)
	}
	clone := *schedule
	return &clone, nil
}

func (s *ScheduleStore) Put(schedule *model.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *schedule
	s.items[schedule.ID] = &clone
	return s.save()
}

func (s *ScheduleStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("schedule %s not found", id)
	}
	delete(s.items, id)
	return s.save()
}

func (s *ScheduleStore) List() []*model.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedules := make([]*model.Schedule, 0, len(s.items))
	for _, schedule := range s.items {
		clone := *schedule
		schedules = append(schedules, &clone)
	}
	sort.Slice(schedules, func(i, j int) bool {
		return schedules[i].CreatedAt.Before(schedules[j].CreatedAt)
	})
	return schedules
}

func (s *ScheduleStore) Active() []*model.Schedule {
	all := s.List()
	active := all[:0]
	for _, schedule := range all {
		if schedule.Active {
			active = append(active, schedule)
		}
	}
	return active
}

func (s *ScheduleStore) save() error {
	schedules := make([]*model.Schedule, 0, len(s.items))
	for _, schedule := range s.items {
		schedules = append(schedules, schedule)
	}
	sort.Slice(schedules, func(i, j int) bool {
		return schedules[i].CreatedAt.Before(schedules[j].CreatedAt)
	})
	return SaveJSON(s.dataFile, schedules)
}
