package renderer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func testInput(t *testing.T) Input {
	t.Helper()
	return Input{
		StoryID:     "story-1",
		Style:       "story",
		AspectRatio: "9:16",
		OutputDir:   filepath.Join(t.TempDir(), "out"),
		Scenes: []Scene{
			{ID: 0, Narration: "One.", ImagePrompt: "one"},
		},
	}
}

func TestWorkerRenderSuccess(t *testing.T) {
	videoPath := filepath.Join(t.TempDir(), "final.mp4")
	if err := os.WriteFile(videoPath, []byte("video"), 0644); err != nil {
		t.Fatalf("write video: %v", err)
	}

	script := writeScript(t, `echo "progress line"
echo '{"video_path":"`+videoPath+`"}'`)

	worker := NewWorker([]string{"/bin/sh", script}, "", time.Minute)
	got, err := worker.Render(context.Background(), testInput(t))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got != videoPath {
		t.Errorf("Render() = %q, want %q", got, videoPath)
	}
}

func TestWorkerRenderNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "model unavailable" >&2
exit 1`)

	worker := NewWorker([]string{"/bin/sh", script}, "", time.Minute)
	_, err := worker.Render(context.Background(), testInput(t))
	if err == nil {
		t.Fatal("Render() expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Errorf("error %q does not carry worker stderr", err)
	}
}

func TestWorkerRenderMalformedOutput(t *testing.T) {
	script := writeScript(t, `echo "not json at all"`)

	worker := NewWorker([]string{"/bin/sh", script}, "", time.Minute)
	_, err := worker.Render(context.Background(), testInput(t))
	if err == nil {
		t.Fatal("Render() expected error")
	}
	if !strings.Contains(err.Error(), "malformed") {
		t.Errorf("error %q, want malformed-output failure", err)
	}
}

func TestWorkerRenderMissingVideoFile(t *testing.T) {
	script := writeScript(t, `echo '{"video_path":"/nonexistent/final.mp4"}'`)

	worker := NewWorker([]string{"/bin/sh", script}, "", time.Minute)
	_, err := worker.Render(context.Background(), testInput(t))
	if err == nil {
		t.Fatal("Render() expected error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error %q, want missing-file failure", err)
	}
}

func TestWorkerRenderTimeout(t *testing.T) {
	script := writeScript(t, `sleep 10`)

	worker := NewWorker([]string{"/bin/sh", script}, "", 100*time.Millisecond)
	start := time.Now()
	_, err := worker.Render(context.Background(), testInput(t))
	if err == nil {
		t.Fatal("Render() expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error %q, want timeout failure", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Render() did not honor the timeout")
	}
}
