package storyboard

import (
	"regexp"
	"strings"
)

const (
	maxScenes         = 50
	minSentenceLength = 10
)

type Scene struct {
	Narration   string
	ImagePrompt string
}

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

var stylePrefixes = map[string]string{
	"science_short":  "science, technology, ",
	"hollywood_hype": "news, celebrity, ",
	"trade_wave":     "finance, business, ",
}

// Split breaks narration text into ordered scenes, one sentence each.
// Sentences under 10 characters are dropped and the storyboard is
// capped at 50 scenes to bound render cost.
func Split(content, style string) []Scene {
	content = strings.ReplaceAll(content, "\r", " ")
	content = strings.ReplaceAll(content, "\n", " ")

	prefix := stylePrefixes[style]

	scenes := make([]Scene, 0)
	for _, sentence := range sentencePattern.FindAllString(content, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minSentenceLength {
			continue
		}

		scenes = append(scenes, Scene{
			Narration:   sentence,
			ImagePrompt: prefix + sentence,
		})

		if len(scenes) == maxScenes {
			break
		}
	}

	return scenes
}
