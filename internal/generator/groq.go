package generator

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"
)

const defaultGroqModel = "llama-3.3-70b-versatile"

type GroqGenerator struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *Prompts
}

func NewGroqGenerator(apiKey, model string, prompts *Prompts) (*GroqGenerator, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	if model == "" {
		model = defaultGroqModel
	}

	return &GroqGenerator{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: prompts,
	}, nil
}

func (g *GroqGenerator) Generate(ctx context.Context, req Request) (*Draft, error) {
	prompt, err := g.prompts.RenderStory(StoryParams{
		Topic:        req.Topic,
		Style:        req.Style,
		TalkingStyle: req.TalkingStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	resp, err := g.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: g.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: g.prompts.System},
			{Role: groq.RoleUser, Content: prompt},
		},
		ResponseFormat: &groq.ChatResponseFormat{
			Type: "json_object",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate story: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	return parseDraft(resp.Choices[0].Message.Content)
}
