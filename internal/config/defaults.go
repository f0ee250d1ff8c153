package config

import "time"

// Default configuration values
const (
	DefaultHTTPPort        = "8080"
	DefaultMaxUploadMB     = 512
	DefaultShutdownTimeout = 30 * time.Second

	DefaultModel          = "gemini-3-flash-preview"
	DefaultRequestTimeout = 5 * time.Minute

	DefaultChunkSeconds   = 600
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = time.Second

	DefaultSummaryProvider = "gemini"
	DefaultOpenAIModel     = "gpt-4o-mini"

	DefaultStoreDriver  = "sqlite"
	DefaultSQLitePath   = "data/echoscript.db"
	DefaultAudioBackend = "fs"
	DefaultAudioDir     = "data/audio"
	DefaultMinioBucket  = "echoscript-audio"

	DefaultFFmpegPath  = "ffmpeg"
	DefaultFFprobePath = "ffprobe"

	DefaultLogLevel = "info"
)

// Default returns a configuration with every default applied
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultHTTPPort,
			MaxUploadMB:     DefaultMaxUploadMB,
			ShutdownTimeout: DefaultShutdownTimeout,
			CORSOrigins:     []string{"*"},
		},
		Gemini: GeminiConfig{
			Model:          DefaultModel,
			RequestTimeout: DefaultRequestTimeout,
		},
		Summary: SummaryConfig{
			Provider:    DefaultSummaryProvider,
			OpenAIModel: DefaultOpenAIModel,
		},
		Pipeline: PipelineConfig{
			ChunkSeconds:   DefaultChunkSeconds,
			MaxAttempts:    DefaultMaxAttempts,
			RetryBaseDelay: DefaultRetryBaseDelay,
		},
		Storage: StorageConfig{
			Driver:       DefaultStoreDriver,
			SQLitePath:   DefaultSQLitePath,
			AudioBackend: DefaultAudioBackend,
			AudioDir:     DefaultAudioDir,
			Minio: MinioConfig{
				Bucket: DefaultMinioBucket,
			},
		},
		Audio: AudioConfig{
			FFmpegPath:  DefaultFFmpegPath,
			FFprobePath: DefaultFFprobePath,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}
