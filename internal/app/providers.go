package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"echoscript/internal/api/server"
	"echoscript/internal/app/api/gemini"
	"echoscript/internal/app/api/openai"
	"echoscript/internal/app/api/openai/chat"
	"echoscript/internal/app/audio"
	"echoscript/internal/app/converter"
	"echoscript/internal/app/logging"
	"echoscript/internal/app/metrics"
	"echoscript/internal/app/processor"
	"echoscript/internal/app/repository"
	"echoscript/internal/app/repository/pg"
	"echoscript/internal/app/repository/redis"
	"echoscript/internal/app/repository/sqlite"
	"echoscript/internal/app/storage/blob"
	"echoscript/internal/config"
	"echoscript/internal/downloader"
)

const downloadTimeout = 30 * time.Minute

// App bundles everything the commands need
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     repository.JobDAO
	Client    *gemini.Client
	Processor *processor.Processor
	Converter *converter.Converter
	Server    *server.Server
}

func NewApp(
	cfg *config.Config,
	logger *zap.Logger,
	store repository.JobDAO,
	client *gemini.Client,
	p *processor.Processor,
	c *converter.Converter,
	s *server.Server,
) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Client:    client,
		Processor: p,
		Converter: c,
		Server:    s,
	}
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := logging.NewLogger(cfg.Log.Development, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg prometheus.Registerer) *metrics.Metrics {
	return metrics.New(reg)
}

// OpenJobDAO opens the job store selected by storage.Driver
func OpenJobDAO(ctx context.Context, storage config.StorageConfig) (repository.JobDAO, error) {
	switch storage.Driver {
	case "postgres":
		return pg.Open(ctx, storage.DatabaseURL)
	case "redis":
		return redis.Open(ctx, storage.RedisAddr, storage.RedisPassword, storage.RedisDB)
	case "sqlite", "":
		return sqlite.NewSQLiteDB(ctx, storage.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", storage.Driver)
	}
}

func provideJobDAO(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.JobDAO, func(), error) {
	store, err := OpenJobDAO(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("job store opened", zap.String("driver", cfg.Storage.Driver))
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close job store", zap.Error(err))
		}
	}, nil
}

// OpenAudioStore opens the blob store selected by storage.AudioBackend
func OpenAudioStore(ctx context.Context, storage config.StorageConfig) (blob.AudioStore, error) {
	if storage.AudioBackend == "minio" {
		return blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  storage.Minio.Endpoint,
			AccessKey: storage.Minio.AccessKey,
			SecretKey: storage.Minio.SecretKey,
			Bucket:    storage.Minio.Bucket,
			UseSSL:    storage.Minio.UseSSL,
		})
	}
	return blob.NewFileStore(storage.AudioDir)
}

func provideAudioStore(ctx context.Context, cfg *config.Config) (blob.AudioStore, error) {
	return OpenAudioStore(ctx, cfg.Storage)
}

func providePreparer(cfg *config.Config, logger *zap.Logger) *audio.Preparer {
	ffmpeg := audio.NewFFmpegDecoder(cfg.Audio.FFmpegPath, cfg.Audio.FFprobePath, cfg.Audio.TempDir, logger)
	return audio.NewPreparer(ffmpeg, logger)
}

func provideGeminiClient(cfg *config.Config, logger *zap.Logger) *gemini.Client {
	return gemini.NewClient(gemini.Config{
		Model:          cfg.Gemini.Model,
		RequestTimeout: cfg.Gemini.RequestTimeout,
	}, nil, logger)
}

// provideSummarizer picks the summary backend. Both share the fallback contract.
func provideSummarizer(cfg *config.Config, client *gemini.Client, logger *zap.Logger) processor.Summarizer {
	if cfg.Summary.Provider == "openai" {
		oa := openai.NewClient(cfg.Summary.OpenAIKey, cfg.Summary.OpenAIBaseURL)
		return chat.NewSummarizer(oa, cfg.Summary.OpenAIModel, logger)
	}
	return client
}

func provideProcessorConfig(cfg *config.Config) processor.Config {
	return processor.Config{
		ChunkSeconds:   cfg.Pipeline.ChunkSeconds,
		MaxAttempts:    cfg.Pipeline.MaxAttempts,
		RetryBaseDelay: cfg.Pipeline.RetryBaseDelay,
	}
}

func provideProcessor(
	config processor.Config,
	store repository.JobDAO,
	blobs blob.AudioStore,
	preparer processor.AudioPreparer,
	transcriber processor.ChunkTranscriber,
	summarizer processor.Summarizer,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*processor.Processor, func()) {
	p := processor.New(config, store, blobs, preparer, transcriber, summarizer, m, logger)
	return p, p.Close
}

func provideFetcher(cfg *config.Config, logger *zap.Logger) *downloader.Fetcher {
	return downloader.NewFetcher(&http.Client{Timeout: downloadTimeout}, cfg.MaxUploadBytes(), logger)
}

func provideConverter(p *processor.Processor, fetcher *downloader.Fetcher, progress *converter.ProgressManager, logger *zap.Logger) (*converter.Converter, func()) {
	c := converter.NewConverter(p, fetcher, progress, logger)
	return c, c.Close
}

func provideServerConfig(cfg *config.Config) server.Config {
	return server.Config{
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		CORSOrigins:     cfg.Server.CORSOrigins,
		Production:      !cfg.Log.Development,
	}
}
