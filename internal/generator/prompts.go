package generator

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

const defaultSystemPrompt = "You are a professional screenwriter and storyteller. You always output valid JSON."

const defaultStoryPrompt = `Write a short, engaging story that would make a 2.5 minute video.
The story should be approximately 350-400 words with vivid descriptions and a
clear narrative arc (beginning, middle, end).
{{if .Topic}}The topic of the story is: {{.Topic}}.{{else}}Choose an interesting and cinematic topic.{{end}}
{{if .Style}}The content style is "{{.Style}}".{{end}}
{{if .TalkingStyle}}Narrate in a {{.TalkingStyle}} talking style.{{end}}

Respond with a JSON object with fields "title", "content", "youtube_title",
"youtube_description" and "youtube_tags" (an array of strings). The content
field is the full story text.`

type Prompts struct {
	System string `yaml:"system"`
	Story  string `yaml:"story"`
}

type StoryParams struct {
	Topic        string
	Style        string
	TalkingStyle string
}

// LoadPrompts reads prompts.yaml if present, falling back to the
// built-in templates for anything unset.
func LoadPrompts() *Prompts {
	return LoadPromptsFrom(defaultPromptsPath)
}

func LoadPromptsFrom(path string) *Prompts {
	p := &Prompts{}
	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, p)
	}
	if p.System == "" {
		p.System = defaultSystemPrompt
	}
	if p.Story == "" {
		p.Story = defaultStoryPrompt
	}
	return p
}

func (p *Prompts) RenderStory(params StoryParams) (string, error) {
	return render(p.Story, params)
}

func render(text string, params any) (string, error) {
	tmpl, err := template.New("prompt").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return buf.String(), nil
}
