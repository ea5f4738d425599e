// Package uploader publishes rendered videos to their destinations
// and tracks each attempt through a small per-destination state
// machine: not started, uploading, then completed, scheduled or
// failed.
package uploader

import (
	"context"
	"time"
)

const (
	PlatformYouTube  = "youtube"
	PlatformFacebook = "facebook"
)

// Request carries everything a destination needs for one upload. A
// non-nil PublishAt asks the platform to hold the video private and
// publish it at that time.
type Request struct {
	FilePath    string
	Title       string
	Description string
	Tags        []string
	PublishAt   *time.Time
}

// Result is a successful upload. Scheduled mirrors whether the
// platform accepted a deferred publish time.
type Result struct {
	VideoID   string
	Scheduled bool
}

// Destination is one platform endpoint bound to a specific channel or
// page. Upload runs the platform's full protocol start to finish; a
// failed attempt leaves no session state behind, so a retry always
// opens a fresh session.
type Destination interface {
	Name() string
	Upload(ctx context.Context, req Request) (*Result, error)
}
