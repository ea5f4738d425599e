package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"storyforge/internal/model"
)

const (
	channelsFile = "channels.json"
	pagesFile    = "pages.json"
)

// ChannelStore holds connected YouTube channels, keyed by channel id.
// There is exactly one credential set per channel; reconnecting a
// channel overwrites its previous tokens.
type ChannelStore struct {
	mu       sync.RWMutex
	dataFile string
	items    map[string]*model.YouTubeChannel
}

func NewChannelStore(dataDir string) *ChannelStore {
	s := &ChannelStore{
		dataFile: filepath.Join(dataDir, channelsFile),
		items:    make(map[string]*model.YouTubeChannel),
	}
	var channels []*model.YouTubeChannel
	LoadJSON(s.dataFile, &channels)
	for _, channel := range channels {
		s.items[channel.ChannelID] = channel
	}
	return s
}

func (s *ChannelStore) Get(channelID string) (*model.YouTubeChannel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channel, ok := s.items[channelID]
	if !ok {
		return nil, fmt.Errorf("youtube channel %s not connected", channelID)
	}
	clone := *channel
	return &clone, nil
}

func (s *ChannelStore) Put(channel *model.YouTubeChannel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *channel
	s.items[channel.ChannelID] = &clone
	return s.save()
}

func (s *ChannelStore) Delete(channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[channelID]; !ok {
		return fmt.Errorf("youtube channel %s not connected", channelID)
	}
	delete(s.items, channelID)
	return s.save()
}

func (s *ChannelStore) List() []*model.YouTubeChannel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	channels := make([]*model.YouTubeChannel, 0, len(s.items))
	for _, channel := range s.items {
		clone := *channel
		channels = append(channels, &clone)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].CreatedAt.Before(channels[j].CreatedAt)
	})
	return channels
}

func (s *ChannelStore) save() error {
	channels := make([]*model.YouTubeChannel, 0, len(s.items))
	for _, channel := range s.items {
		channels = append(channels, channel)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].CreatedAt.Before(channels[j].CreatedAt)
	})
	return SaveJSON(s.dataFile, channels)
}

// PageStore holds connected Facebook pages, keyed by page id.
type PageStore struct {
	mu       sync.RWMutex
	dataFile string
	items    map[string]*model.FacebookPage
}

func NewPageStore(dataDir string) *PageStore {
	s := &PageStore{
		dataFile: filepath.Join(dataDir, pagesFile),
		items:    make(map[string]*model.FacebookPage),
	}
	var pages []*model.FacebookPage
	LoadJSON(s.dataFile, &pages)
	for _, page := range pages {
		s.items[page.PageID] = page
	}
	return s
}

func (s *PageStore) Get(pageID string) (*model.FacebookPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.items[pageID]
	if !ok {
		return nil, fmt.Errorf("facebook page %s not connected", pageID)
	}
	clone := *page
	return &clone, nil
}

func (s *PageStore) Put(page *model.FacebookPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *page
	s.items[page.PageID] = &clone
	return s.save()
}

func (s *PageStore) Delete(pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[pageID]; !ok {
		return fmt.Errorf("facebook page %s not connected", pageID)
	}
	delete(s.items, pageID)
	return s.save()
}

func (s *PageStore) List() []*model.FacebookPage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pages := make([]*model.FacebookPage, 0, len(s.items))
	for _, page := range s.items {
		clone := *page
		pages = append(pages, &clone)
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].CreatedAt.Before(pages[j].CreatedAt)
	})
	return pages
}

func (s *PageStore) save() error {
	pages := make([]*model.FacebookPage, 0, len(s.items))
	for _, page := range s.items {
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].CreatedAt.Before(pages[j].CreatedAt)
	})
	return SaveJSON(s.dataFile, pages)
}
