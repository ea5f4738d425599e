package model

import "time"

const (
	StatusPending    StoryStatus = "pending"
	StatusProcessing StoryStatus = "processing"
	StatusCompleted  StoryStatus = "completed"
	StatusFailed     StoryStatus = "failed"
)

const (
	UploadNotStarted UploadStatus = ""
	UploadUploading  UploadStatus = "uploading"
	UploadCompleted  UploadStatus = "completed"
	UploadScheduled  UploadStatus = "scheduled"
	UploadFailed     UploadStatus = "failed"
)

type StoryStatus string

type UploadStatus string

// Schedule is a recurring generation policy: how many videos per day,
// at which local times, and where to publish them.
type Schedule struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Style            string    `json:"style"`
	TalkingStyle     string    `json:"talking_style"`
	AspectRatio      string    `json:"aspect_ratio"`
	VideosPerDay     int       `json:"videos_per_day"`
	Timezone         string    `json:"timezone"`
	UploadTimes      []string  `json:"upload_times"`
	Active           bool      `json:"active"`
	PromptTemplate   string    `json:"prompt_template,omitempty"`
	YouTubeChannelID string    `json:"youtube_channel_id,omitempty"`
	FacebookPageID   string    `json:"facebook_page_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// SlotQuota is the per-slot generation budget: videos_per_day spread
// across the configured times by ceiling division.
func (s *Schedule) SlotQuota() int {
	if len(s.UploadTimes) == 0 {
		return 0
	}
	return (s.VideosPerDay + len(s.UploadTimes) - 1) / len(s.UploadTimes)
}

type Scene struct {
	Order       int    `json:"order"`
	Narration   string `json:"narration"`
	ImagePrompt string `json:"image_prompt"`
	ImagePath   string `json:"image_path,omitempty"`
	AudioPath   string `json:"audio_path,omitempty"`
}

// UploadAttempt tracks one destination's upload outcome on a story.
// Completed/scheduled imply VideoID is set; failed implies Error is set.
type UploadAttempt struct {
	Status  UploadStatus `json:"status,omitempty"`
	VideoID string       `json:"video_id,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type Story struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Content            string        `json:"content"`
	Style              string        `json:"style"`
	TalkingStyle       string        `json:"talking_style,omitempty"`
	AspectRatio        string        `json:"aspect_ratio"`
	Status             StoryStatus   `json:"status"`
	Error              string        `json:"error,omitempty"`
	VideoPath          string        `json:"video_path,omitempty"`
	ScheduledFor       *time.Time    `json:"scheduled_for,omitempty"`
	FromScheduler      bool          `json:"from_scheduler"`
	YouTubeChannelID   string        `json:"youtube_channel_id,omitempty"`
	FacebookPageID     string        `json:"facebook_page_id,omitempty"`
	YouTubeTitle       string        `json:"youtube_title,omitempty"`
	YouTubeDescription string        `json:"youtube_description,omitempty"`
	YouTubeTags        []string      `json:"youtube_tags,omitempty"`
	YouTube            UploadAttempt `json:"youtube"`
	Facebook           UploadAttempt `json:"facebook"`
	Scenes             []Scene       `json:"scenes,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// YouTubeChannel is a connected upload destination: one credential set
// per channel id.
type YouTubeChannel struct {
	ChannelID    string    `json:"channel_id"`
	Title        string    `json:"title"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry"`
	CreatedAt    time.Time `json:"created_at"`
}

// FacebookPage is a connected page destination. Page tokens are
// long-lived and not refreshable; a zero Expiry means no known expiry.
type FacebookPage struct {
	PageID      string    `json:"page_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
