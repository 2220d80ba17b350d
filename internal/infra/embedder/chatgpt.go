package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ecomly/support-ai/internal/domain/suggest"
	"github.com/ecomly/support-ai/internal/infra/llm/chatgpt"
)

// ChatGPT calls an OpenAI-compatible embeddings API.
type ChatGPT struct {
	client *chatgpt.Client
	model  string
	logger *slog.Logger
}

// NewChatGPT constructs an embedder backed by the chatgpt client.
func NewChatGPT(client *chatgpt.Client, model string, logger *slog.Logger) *ChatGPT {
	return &ChatGPT{
		client: client,
		model:  strings.TrimSpace(model),
		logger: logger.With("component", "embedder.chatgpt"),
	}
}

// Embed requests the embedding vector for a single text.
func (e *ChatGPT) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbedding(ctx, chatgpt.EmbeddingRequest{
		Model: e.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	copy(vec, resp.Data[0].Embedding)
	return vec, nil
}

var _ suggest.Embedder = (*ChatGPT)(nil)
