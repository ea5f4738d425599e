package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

const defaultRenderTimeout = 30 * time.Minute

// Worker shells out to the external render process, passing the scene
// payload as a JSON argument and reading the result from stdout.
type Worker struct {
	command []string
	workDir string
	timeout time.Duration
}

type workerResult struct {
	VideoPath string `json:"video_path"`
}

func NewWorker(command []string, workDir string, timeout time.Duration) *Worker {
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &Worker{
		command: command,
		workDir: workDir,
		timeout: timeout,
	}
}

func (w *Worker) Render(ctx context.Context, input Input) (string, error) {
	if len(w.command) == 0 {
		return "", fmt.Errorf("render worker command not configured")
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal worker input: %w", err)
	}

	if err := os.MkdirAll(input.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	args := append(append([]string{}, w.command[1:]...), string(payload))
	cmd := exec.CommandContext(ctx, w.command[0], args...)
	cmd.Dir = w.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Starting render worker", "story", input.StoryID, "scenes", len(input.Scenes))
	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("render worker timed out after %s", w.timeout)
	}
	if err != nil {
		return "", fmt.Errorf("render worker failed: %s", workerErrorDetail(err, &stdout, &stderr))
	}

	var result workerResult
	if err := json.Unmarshal(lastJSONLine(stdout.Bytes()), &result); err != nil {
		return "", fmt.Errorf("render worker produced malformed output: %s", workerErrorDetail(err, &stdout, &stderr))
	}
	if result.VideoPath == "" {
		return "", fmt.Errorf("render worker reported no video path: %s", workerErrorDetail(nil, &stdout, &stderr))
	}

	info, err := os.Stat(result.VideoPath)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("render worker reported success but video file not found at %s", result.VideoPath)
	}

	return result.VideoPath, nil
}

// lastJSONLine picks the final non-empty stdout line; workers are free
// to print progress lines before the result document.
func lastJSONLine(out []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		if line := bytes.TrimSpace(lines[i]); len(line) > 0 {
			return line
		}
	}
	return nil
}

func workerErrorDetail(err error, stdout, stderr *bytes.Buffer) string {
	parts := make([]string, 0, 3)
	if err != nil {
		parts = append(parts, err.Error())
	}
	if s := strings.TrimSpace(stderr.String()); s != "" {
		parts = append(parts, "stderr: "+tail(s, 2000))
	}
	if s := strings.TrimSpace(stdout.String()); s != "" {
		parts = append(parts, "stdout: "+tail(s, 500))
	}
	if len(parts) == 0 {
		return "no output"
	}
	return strings.Join(parts, "; ")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
