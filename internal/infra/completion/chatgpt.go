package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/ecomly/support-ai/internal/domain/sentiment"
	"github.com/ecomly/support-ai/internal/domain/suggest"
	"github.com/ecomly/support-ai/internal/infra/llm/chatgpt"
)

// ChatGPT adapts the chatgpt client to the domain Completer contracts.
type ChatGPT struct {
	client *chatgpt.Client
	model  string
}

// NewChatGPT constructs the adapter for the configured model.
func NewChatGPT(client *chatgpt.Client, model string) *ChatGPT {
	return &ChatGPT{client: client, model: strings.TrimSpace(model)}
}

// Complete sends one system instruction and one user prompt and returns
// the assistant text. An empty choice list is an error, not an empty
// answer.
func (c *ChatGPT) Complete(ctx context.Context, system, prompt string, temperature float32, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: c.model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var (
	_ suggest.Completer   = (*ChatGPT)(nil)
	_ sentiment.Completer = (*ChatGPT)(nil)
)
