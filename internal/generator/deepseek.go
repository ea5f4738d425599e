package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"storyforge/pkg/httputil"
)

const (
	deepseekBaseURL      = "https://api.deepseek.com/v1/chat/completions"
	defaultDeepSeekModel = "deepseek-chat"
)

// DeepSeekGenerator talks to the DeepSeek chat-completions API, which
// is OpenAI-shaped but has no groq client; requests go through the
// retrying HTTP client.
type DeepSeekGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *httputil.RetryClient
	prompts *Prompts
}

type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepseekRequest struct {
	Model    string            `json:"model"`
	Messages []deepseekMessage `json:"messages"`
}

type deepseekResponse struct {
	Choices []struct {
		Message deepseekMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewDeepSeekGenerator(apiKey, model string, prompts *Prompts) *DeepSeekGenerator {
	if model == "" {
		model = defaultDeepSeekModel
	}

	return &DeepSeekGenerator{
		apiKey:  apiKey,
		model:   model,
		baseURL: deepseekBaseURL,
		client:  httputil.NewRetryClient(nil, httputil.DefaultRetryConfig()),
		prompts: prompts,
	}
}

func (g *DeepSeekGenerator) Generate(ctx context.Context, req Request) (*Draft, error) {
	prompt, err := g.prompts.RenderStory(StoryParams{
		Topic:        req.Topic,
		Style:        req.Style,
		TalkingStyle: req.TalkingStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	body, err := json.Marshal(deepseekRequest{
		Model: g.model,
		Messages: []deepseekMessage{
			{Role: "system", Content: g.prompts.System},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generate story: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed deepseekResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if parsed.Error != nil {
		return nil, fmt.Errorf("deepseek error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deepseek returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	return parseDraft(parsed.Choices[0].Message.Content)
}
