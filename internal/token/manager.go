// Package token keeps destination credentials usable: it refreshes
// YouTube OAuth tokens before they expire and evicts credentials the
// provider has permanently rejected.
package token

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"storyforge/internal/model"
	"storyforge/internal/store"
)

// ReauthorizationError means the stored credential is gone for good
// and a human has to reconnect the destination.
type ReauthorizationError struct {
	Platform string
	Target   string
}

func (e *ReauthorizationError) Error() string {
	return fmt.Sprintf("%s authorization for %q is no longer valid, please reconnect it", e.Platform, e.Target)
}

// Manager hands out valid access tokens for connected destinations.
// Refreshes for the same target are serialized so concurrent uploads
// cannot race a single-use refresh token.
type Manager struct {
	channels *store.ChannelStore
	pages    *store.PageStore
	oauth    *oauth2.Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(channels *store.ChannelStore, pages *store.PageStore, oauth *oauth2.Config) *Manager {
	return &Manager{
		channels: channels,
		pages:    pages,
		oauth:    oauth,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *Manager) lockFor(target string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[target]
	if !ok {
		l = &sync.Mutex{}
		m.locks[target] = l
	}
	return l
}

// ChannelToken returns a valid OAuth token for the channel, refreshing
// it first if it has expired. A refresh rejected as permanent deletes
// the channel and returns a ReauthorizationError.
func (m *Manager) ChannelToken(ctx context.Context, channelID string) (*oauth2.Token, error) {
	l := m.lockFor("youtube:" + channelID)
	l.Lock()
	defer l.Unlock()

	channel, err := m.channels.Get(channelID)
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{
		AccessToken:  channel.AccessToken,
		RefreshToken: channel.RefreshToken,
		Expiry:       channel.Expiry,
		TokenType:    "Bearer",
	}
	if tok.Valid() {
		return tok, nil
	}

	slog.Debug("Refreshing channel token", "channel", channelID)
	fresh, err := m.oauth.TokenSource(ctx, tok).Token()
	if err != nil {
		if permanentAuthFailure(err) {
			slog.Warn("Channel credential revoked, removing it", "channel", channelID, "title", channel.Title)
			if delErr := m.channels.Delete(channelID); delErr != nil {
				slog.Error("Failed to remove revoked channel", "channel", channelID, "error", delErr)
			}
			return nil, &ReauthorizationError{Platform: "YouTube", Target: channel.Title}
		}
		return nil, fmt.Errorf("refresh token for channel %s: %w", channelID, err)
	}

	channel.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		channel.RefreshToken = fresh.RefreshToken
	}
	channel.Expiry = fresh.Expiry
	if err := m.channels.Put(channel); err != nil {
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}
	return fresh, nil
}

// PageToken returns the page access token. Page tokens cannot be
// refreshed; a token past its known expiry evicts the page.
func (m *Manager) PageToken(ctx context.Context, pageID string) (string, error) {
	l := m.lockFor("facebook:" + pageID)
	l.Lock()
	defer l.Unlock()

	page, err := m.pages.Get(pageID)
	if err != nil {
		return "", err
	}
	if !page.Expiry.IsZero() && time.Now().After(page.Expiry) {
		slog.Warn("Page token expired, removing it", "page", pageID, "name", page.Name)
		if delErr := m.pages.Delete(pageID); delErr != nil {
			slog.Error("Failed to remove expired page", "page", pageID, "error", delErr)
		}
		return "", &ReauthorizationError{Platform: "Facebook", Target: page.Name}
	}
	return page.AccessToken, nil
}

// Channel returns the stored channel record without touching the
// token. Callers that only need metadata use this.
func (m *Manager) Channel(channelID string) (*model.YouTubeChannel, error) {
	return m.channels.Get(channelID)
}

// permanentAuthFailure reports whether a refresh error means the grant
// itself is dead rather than the provider being briefly unreachable.
func permanentAuthFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid_grant") ||
		strings.Contains(msg, "expired") ||
		strings.Contains(msg, "revoked")
}
