package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSArchive keeps rendered videos in a Cloud Storage bucket under a
// fixed prefix.
type GCSArchive struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSArchive(ctx context.Context, bucket, prefix string) (*GCSArchive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSArchive{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (a *GCSArchive) Close() error {
	return a.client.Close()
}

func (a *GCSArchive) Store(ctx context.Context, localPath, objectName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer func() { _ = f.Close() }()

	object := path.Join(a.prefix, objectName)
	w := a.client.Bucket(a.bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload to gs://%s/%s: %w", a.bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, object), nil
}

func (a *GCSArchive) Remove(ctx context.Context, ref string) error {
	object, ok := strings.CutPrefix(ref, "gs://"+a.bucket+"/")
	if !ok {
		return fmt.Errorf("reference %q is not in bucket %s", ref, a.bucket)
	}

	if err := a.client.Bucket(a.bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}
