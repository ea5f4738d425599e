package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"storyforge/internal/model"
)

const storiesFile = "stories.json"

// StoryStore persists stories as a single JSON document. Every mutation
// is written to disk before the method returns, so callers can rely on
// save ordering (the evaluator records ledger entries only after the
// story row is durable).
type StoryStore struct {
	mu       sync.RWMutex
	dataFile string
	items    map[string]*model.Story
}

func NewStoryStore(dataDir string) *StoryStore {
	s := &StoryStore{
		dataFile: filepath.Join(dataDir, storiesFile),
		items:    make(map[string]*model.Story),
	}
	var stories []*model.Story
	LoadJSON(s.dataFile, &stories)
	for _, story := range stories {
		s.items[story.ID] = story
	}
	return s
}

func (s *StoryStore) Get(id string) (*model.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	story, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("story %s not found", id)
	}
	clone := *story
	return &clone, nil
}

func (s *StoryStore) Put(story *model.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	story.UpdatedAt = time.Now().UTC()
	clone := *story
	s.items[story.ID] = &clone
	return s.save()
}

// Update applies fn to the stored story under the write lock and
// persists the result. This is the single-writer path for status
// transitions; concurrent uploads for the same story serialize here.
func (s *StoryStore) Update(id string, fn func(*model.Story)) (*model.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	story, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("story %s not found", id)
	}

	fn(story)
	story.UpdatedAt = time.Now().UTC()
	if err := s.save(); err != nil {
		return nil, err
	}
	clone := *story
	return &clone, nil
}

func (s *StoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("story %s not found", id)
	}
	delete(s.items, id)
	return s.save()
}

func (s *StoryStore) List() []*model.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stories := make([]*model.Story, 0, len(s.items))
	for _, story := range s.items {
		clone := *story
		stories = append(stories, &clone)
	}
	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.Before(stories[j].CreatedAt)
	})
	return stories
}

// Filter returns stories matching pred, oldest first.
func (s *StoryStore) Filter(pred func(*model.Story) bool) []*model.Story {
	all := s.List()
	matched := all[:0]
	for _, story := range all {
		if pred(story) {
			matched = append(matched, story)
		}
	}
	return matched
}

func (s *StoryStore) save() error {
	stories := make([]*model.Story, 0, len(s.items))
	for _, story := range s.items {
		stories = append(stories, story)
	}
	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.Before(stories[j].CreatedAt)
	})
	return SaveJSON(s.dataFile, stories)
}
