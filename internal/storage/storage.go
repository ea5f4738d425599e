// Package storage archives rendered videos so retention cleanup can
// reclaim local disk without losing the asset.
package storage

import "context"

// Archive stores video files somewhere durable. Store returns a
// reference usable with Remove.
type Archive interface {
	Store(ctx context.Context, localPath, objectName string) (string, error)
	Remove(ctx context.Context, ref string) error
}
