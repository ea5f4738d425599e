package generator

import "context"

// Request describes one story to generate. Topic may be empty, in
// which case the model picks its own.
type Request struct {
	Topic        string
	Style        string
	AspectRatio  string
	TalkingStyle string
}

// Draft is the generated script plus the publishing metadata the
// destinations need.
type Draft struct {
	Title              string   `json:"title"`
	Content            string   `json:"content"`
	YouTubeTitle       string   `json:"youtube_title"`
	YouTubeDescription string   `json:"youtube_description"`
	YouTubeTags        []string `json:"youtube_tags"`
}

// Generator produces a story draft from a request. Implementations
// wrap one LLM provider each.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Draft, error)
}
