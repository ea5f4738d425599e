package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawDraft tolerates the loose shapes models actually return: tags as
// an array or a comma-separated string, metadata fields missing.
type rawDraft struct {
	Title              string          `json:"title"`
	Content            string          `json:"content"`
	YouTubeTitle       string          `json:"youtube_title"`
	YouTubeDescription string          `json:"youtube_description"`
	YouTubeTags        json.RawMessage `json:"youtube_tags"`
}

func parseDraft(content string) (*Draft, error) {
	cleaned := stripFences(content)

	var raw rawDraft
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	if raw.Content == "" {
		return nil, fmt.Errorf("response has no content field")
	}

	draft := &Draft{
		Title:              raw.Title,
		Content:            raw.Content,
		YouTubeTitle:       raw.YouTubeTitle,
		YouTubeDescription: raw.YouTubeDescription,
		YouTubeTags:        parseTags(raw.YouTubeTags),
	}

	if draft.Title == "" {
		draft.Title = "Generated Story"
	}
	if draft.YouTubeTitle == "" {
		draft.YouTubeTitle = draft.Title
	}
	if draft.YouTubeDescription == "" {
		draft.YouTubeDescription = draft.Content
	}
	if len(draft.YouTubeTags) == 0 {
		draft.YouTubeTags = []string{"ai", "story", "animation"}
	}

	return draft, nil
}

// stripFences removes a wrapping ```json ... ``` block if the model
// added one despite the JSON response format.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func parseTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return trimTags(list)
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return trimTags(strings.Split(joined, ","))
	}

	return nil
}

func trimTags(tags []string) []string {
	out := tags[:0]
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
