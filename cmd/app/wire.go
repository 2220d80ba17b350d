//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/ecomly/support-ai/internal/bootstrap"
	"github.com/ecomly/support-ai/internal/infra/config"
	"github.com/ecomly/support-ai/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideChatGPTClient,
		provideEmbedder,
		provideCompleter,
		provideVectorStore,
		providePromptBuilder,
		provideRetriever,
		provideEngine,
		provideSentimentStore,
		provideSentimentService,
		provideHandler,
		provideServer,
		bootstrap.NewApp,
	)
	return nil, nil
}
