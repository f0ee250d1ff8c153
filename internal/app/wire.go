//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"echoscript/internal/api/server"
	"echoscript/internal/api/v1/services"
	"echoscript/internal/app/api/gemini"
	"echoscript/internal/app/audio"
	"echoscript/internal/app/converter"
	"echoscript/internal/app/processor"
	"echoscript/internal/config"
	"echoscript/internal/downloader"
)

var storeSet = wire.NewSet(
	provideJobDAO,
	provideAudioStore,
)

var pipelineSet = wire.NewSet(
	providePreparer,
	provideGeminiClient,
	provideSummarizer,
	provideProcessorConfig,
	provideProcessor,
	wire.Bind(new(processor.AudioPreparer), new(*audio.Preparer)),
	wire.Bind(new(processor.ChunkTranscriber), new(*gemini.Client)),
)

var httpSet = wire.NewSet(
	services.NewJobService,
	services.NewSessionService,
	provideServerConfig,
	server.NewServer,
	wire.Bind(new(services.CredentialValidator), new(*gemini.Client)),
	wire.Bind(new(services.AudioFetcher), new(*downloader.Fetcher)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
)

// InitializeApp wires the whole application from cfg
func InitializeApp(ctx context.Context, cfg *config.Config, progress converter.ProgressConfig) (*App, func(), error) {
	wire.Build(
		provideLogger,
		provideRegistry,
		provideMetrics,
		wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
		storeSet,
		pipelineSet,
		provideFetcher,
		converter.NewProgressManager,
		provideConverter,
		httpSet,
		NewApp,
	)
	return nil, nil, nil
}
