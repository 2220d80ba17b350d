package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/ecomly/support-ai/internal/domain/sentiment"
	"github.com/ecomly/support-ai/internal/domain/suggest"
	"github.com/ecomly/support-ai/internal/infra/completion"
	"github.com/ecomly/support-ai/internal/infra/config"
	"github.com/ecomly/support-ai/internal/infra/embedder"
	"github.com/ecomly/support-ai/internal/infra/llm/chatgpt"
	"github.com/ecomly/support-ai/internal/infra/sentimentcache"
	"github.com/ecomly/support-ai/internal/infra/vectorstore"
	httpiface "github.com/ecomly/support-ai/internal/interface/http"
)

func provideSuggestConfig(cfg *config.Config) suggest.Config {
	return suggest.Config{
		Model:               cfg.LLM.Model,
		Temperature:         cfg.LLM.Temperature,
		TopK:                cfg.AI.TopK,
		MaxResponseTokens:   cfg.AI.MaxResponseTokens,
		ConfidenceThreshold: cfg.AI.ConfidenceThreshold,
		MaxContextTokens:    cfg.AI.MaxContextTokens,
	}
}

func provideSentimentConfig(cfg *config.Config) sentiment.Config {
	return sentiment.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.Sentiment.Temperature,
		MaxTokens:   cfg.Sentiment.MaxTokens,
		CacheTTL:    cfg.Sentiment.CacheTTL,
	}
}

func provideChatGPTClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideEmbedder(cfg *config.Config, client *chatgpt.Client, logger *slog.Logger) suggest.Embedder {
	if cfg.Embedding.Provider == "deterministic" {
		logger.Info("using deterministic embedder", "dim", cfg.Embedding.Dim)
		return embedder.NewDeterministic(cfg.Embedding.Dim)
	}
	return embedder.NewChatGPT(client, cfg.LLM.EmbeddingModel, logger)
}

func provideCompleter(cfg *config.Config, client *chatgpt.Client) *completion.ChatGPT {
	return completion.NewChatGPT(client, cfg.LLM.Model)
}

func provideVectorStore() suggest.VectorStore {
	return vectorstore.NewMemory()
}

func providePromptBuilder(cfg *config.Config) *suggest.PromptBuilder {
	return suggest.NewPromptBuilder(cfg.AI.MaxContextTokens)
}

func provideRetriever(store suggest.VectorStore, emb suggest.Embedder, logger *slog.Logger) *suggest.Retriever {
	return suggest.NewRetriever(store, emb, logger)
}

func provideEngine(cfg *config.Config, retriever *suggest.Retriever, prompts *suggest.PromptBuilder, completer *completion.ChatGPT, logger *slog.Logger) *suggest.Engine {
	return suggest.NewEngine(provideSuggestConfig(cfg), retriever, prompts, completer, logger)
}

func provideSentimentStore(cfg *config.Config, logger *slog.Logger) sentiment.Store {
	if cfg.Sentiment.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return sentimentcache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return sentimentcache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			client.Close()
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("sentiment valkey cache enabled", "addr", cfg.Sentiment.Valkey.Addr)
			return sentimentcache.NewValkeyStore(client, "sentiment")
		}
	}
	return sentimentcache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Sentiment.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Sentiment.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Sentiment.Valkey.Addr}}, nil
}

func provideSentimentService(cfg *config.Config, completer *completion.ChatGPT, store sentiment.Store, logger *slog.Logger) *sentiment.Service {
	return sentiment.NewService(provideSentimentConfig(cfg), completer, store, logger)
}

func provideHandler(eng *suggest.Engine, ret *suggest.Retriever, svc *sentiment.Service, cfg *config.Config, logger *slog.Logger) *httpiface.Handler {
	return httpiface.NewHandler(eng, ret, svc, cfg.LLM.Model, logger)
}

func provideServer(cfg *config.Config, handler *httpiface.Handler, logger *slog.Logger) *http.Server {
	return httpiface.NewRouter(cfg, handler, logger)
}
