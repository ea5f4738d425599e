package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"storyforge/internal/model"
	"storyforge/internal/store"
	"storyforge/internal/token"
)

func newFacebookTestTokens(t *testing.T) *token.Manager {
	t.Helper()
	dir := t.TempDir()
	pages := store.NewPageStore(dir)
	if err := pages.Put(&model.FacebookPage{
		PageID:      "998877",
		Name:        "Trade Wave",
		AccessToken: "page-token",
	}); err != nil {
		t.Fatal(err)
	}
	return token.NewManager(store.NewChannelStore(dir), pages, &oauth2.Config{})
}

// reelServer fakes the Graph API's three phase Reels protocol and
// records what it saw.
type reelServer struct {
	mu          sync.Mutex
	baseURL     string
	starts      int
	finishForm  map[string]string
	chunks      []chunkRecord
	transferred bytes.Buffer
	failChunks  bool
}

type chunkRecord struct {
	offset   string
	fileSize string
	size     int
}

func (s *reelServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/998877/video_reels", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch r.FormValue("upload_phase") {
		case "start":
			s.starts++
			_ = json.NewEncoder(w).Encode(map[string]string{
				"video_id":   fmt.Sprintf("fb-video-%d", s.starts),
				"upload_url": s.baseURL + "/session",
			})
		case "finish":
			s.finishForm = map[string]string{}
			for k, v := range r.Form {
				s.finishForm[k] = v[0]
			}
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"unknown phase"}}`))
		}
	})
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failChunks {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"connection reset during receive"}}`))
			return
		}
		s.chunks = append(s.chunks, chunkRecord{
			offset:   r.Header.Get("offset"),
			fileSize: r.Header.Get("file_size"),
			size:     len(body),
		})
		s.transferred.Write(body)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	return mux
}

func newReelServer(t *testing.T) (*reelServer, *FacebookDestination) {
	t.Helper()
	rs := &reelServer{}
	srv := httptest.NewServer(rs.handler())
	t.Cleanup(srv.Close)
	rs.baseURL = srv.URL

	d := NewFacebookDestination(newFacebookTestTokens(t), "998877", 4)
	d.graphURL = srv.URL
	return rs, d
}

func TestFacebookUploadChunked(t *testing.T) {
	rs, d := newReelServer(t)

	content := []byte("0123456789") // 10 bytes, chunk size 4
	path := filepath.Join(t.TempDir(), "reel.mp4")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	result, err := d.Upload(context.Background(), Request{
		FilePath:    path,
		Title:       "Market Open",
		Description: "Markets opened higher today.",
	})
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if result.VideoID != "fb-video-1" {
		t.Errorf("video id = %q", result.VideoID)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	wantOffsets := []string{"0", "4", "8"}
	if len(rs.chunks) != len(wantOffsets) {
		t.Fatalf("got %d chunks, want %d", len(rs.chunks), len(wantOffsets))
	}
	for i, chunk := range rs.chunks {
		if chunk.offset != wantOffsets[i] {
			t.Errorf("chunk %d offset = %s, want %s", i, chunk.offset, wantOffsets[i])
		}
		if chunk.fileSize != "10" {
			t.Errorf("chunk %d file_size = %s, want 10", i, chunk.fileSize)
		}
	}
	if !bytes.Equal(rs.transferred.Bytes(), content) {
		t.Error("transferred bytes do not reassemble the file")
	}
	if rs.finishForm["video_state"] != "PUBLISHED" {
		t.Errorf("video_state = %q, want PUBLISHED", rs.finishForm["video_state"])
	}
	if rs.finishForm["description"] != "Markets opened higher today." {
		t.Errorf("description = %q", rs.finishForm["description"])
	}
}

func TestFacebookUploadScheduled(t *testing.T) {
	rs, d := newReelServer(t)

	path := filepath.Join(t.TempDir(), "reel.mp4")
	if err := os.WriteFile(path, []byte("reel"), 0644); err != nil {
		t.Fatal(err)
	}

	publishAt := time.Now().Add(6 * time.Hour).Truncate(time.Second)
	result, err := d.Upload(context.Background(), Request{
		FilePath:  path,
		Title:     "Market Open",
		PublishAt: &publishAt,
	})
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if !result.Scheduled {
		t.Error("scheduled upload not reported as scheduled")
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.finishForm["video_state"] != "SCHEDULED" {
		t.Errorf("video_state = %q, want SCHEDULED", rs.finishForm["video_state"])
	}
	if got := rs.finishForm["scheduled_publish_time"]; got != fmt.Sprintf("%d", publishAt.Unix()) {
		t.Errorf("scheduled_publish_time = %q", got)
	}
}

func TestFacebookTransferFailureSurfacesGraphError(t *testing.T) {
	rs, d := newReelServer(t)
	rs.mu.Lock()
	rs.failChunks = true
	rs.mu.Unlock()

	path := filepath.Join(t.TempDir(), "reel.mp4")
	if err := os.WriteFile(path, []byte("reel"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := d.Upload(context.Background(), Request{FilePath: path, Title: "Market Open"})
	if err == nil {
		t.Fatal("Upload() expected error")
	}
	if !strings.Contains(err.Error(), "connection reset during receive") {
		t.Errorf("error %q does not carry the platform message", err)
	}
}
