package renderer

import "context"

type Scene struct {
	ID          int    `json:"id"`
	Narration   string `json:"narration"`
	ImagePrompt string `json:"image_prompt"`
}

// Input is the payload handed to the render worker.
type Input struct {
	StoryID     string  `json:"story_id"`
	Style       string  `json:"style"`
	Scenes      []Scene `json:"scenes"`
	AspectRatio string  `json:"aspect_ratio"`
	OutputDir   string  `json:"output_dir"`
}

// Renderer turns persisted scenes into a video file and returns its
// path. Rendering can take most of an hour for long content.
type Renderer interface {
	Render(ctx context.Context, input Input) (string, error)
}
