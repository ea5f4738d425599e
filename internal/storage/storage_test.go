package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalArchiveStore(t *testing.T) {
	src := filepath.Join(t.TempDir(), "final.mp4")
	if err := os.WriteFile(src, []byte("video-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewLocalArchive(t.TempDir())
	ref, err := a.Store(context.Background(), src, "story-1/final.mp4")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		t.Fatalf("archived file unreadable: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("archived content = %q", data)
	}
}

func TestLocalArchiveStoreMissingSource(t *testing.T) {
	a := NewLocalArchive(t.TempDir())
	if _, err := a.Store(context.Background(), "/nonexistent/final.mp4", "x.mp4"); err == nil {
		t.Error("Store() expected error for missing source")
	}
}

func TestLocalArchiveRemove(t *testing.T) {
	src := filepath.Join(t.TempDir(), "final.mp4")
	if err := os.WriteFile(src, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewLocalArchive(t.TempDir())
	ref, err := a.Store(context.Background(), src, "final.mp4")
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Remove(context.Background(), ref); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(ref); !os.IsNotExist(err) {
		t.Error("archived file still present after Remove()")
	}
}

func TestLocalArchiveRemoveOutsideArchive(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "precious.mp4")
	if err := os.WriteFile(outside, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewLocalArchive(t.TempDir())
	if err := a.Remove(context.Background(), outside); err == nil {
		t.Error("Remove() accepted a path outside the archive")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("file outside the archive was deleted")
	}
}
