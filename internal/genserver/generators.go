package genserver

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/arunkumar2k5/clapclient/internal/genwire"
)

// OpenAIGenerator answers llm.generate requests with a chat completion.
type OpenAIGenerator struct {
	client       *openai.Client
	defaultModel string
}

func NewOpenAIGenerator(apiKey, defaultModel string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:       openai.NewClient(apiKey),
		defaultModel: defaultModel,
	}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) Generate(ctx context.Context, params genwire.Params) (string, map[string]any, error) {
	model := params.Model
	if model == "" {
		model = g.defaultModel
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: params.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: params.System},
			{Role: openai.ChatMessageRoleUser, Content: params.Prompt},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("chat completion returned no choices")
	}

	usage := map[string]any{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}

// EchoGenerator is the keyless fallback: it reflects the prompt so the
// clients can be exercised without an API key.
type EchoGenerator struct{}

func (EchoGenerator) Name() string { return "echo" }

func (EchoGenerator) Generate(_ context.Context, params genwire.Params) (string, map[string]any, error) {
	text := fmt.Sprintf("(echo mode, no generation backend configured)\n\nmodel: %s\n\n%s", params.Model, params.Prompt)
	return text, map[string]any{"mode": "echo"}, nil
}
