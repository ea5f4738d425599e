package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalArchive copies videos into a directory on the same disk. It is
// the default when no bucket is configured.
type LocalArchive struct {
	dir string
}

func NewLocalArchive(dir string) *LocalArchive {
	return &LocalArchive{dir: dir}
}

func (a *LocalArchive) Store(ctx context.Context, localPath, objectName string) (string, error) {
	dest := filepath.Join(a.dir, objectName)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy video: %w", err)
	}
	return dest, nil
}

func (a *LocalArchive) Remove(ctx context.Context, ref string) error {
	// Refuse anything outside the archive directory.
	if !strings.HasPrefix(filepath.Clean(ref), filepath.Clean(a.dir)+string(os.PathSeparator)) {
		return fmt.Errorf("reference %q is not inside archive %s", ref, a.dir)
	}
	if err := os.Remove(ref); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}
