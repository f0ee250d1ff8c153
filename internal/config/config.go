// Package config loads the service configuration: defaults, then an
// optional YAML file, then environment variables, then validation.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "echoscript/internal/app/errors"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Summary  SummaryConfig  `yaml:"summary"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Storage  StorageConfig  `yaml:"storage"`
	Audio    AudioConfig    `yaml:"audio"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" validate:"required,numeric"`
	MaxUploadMB     int           `yaml:"max_upload_mb" validate:"min=1,max=4096"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// GeminiConfig configures the inference backend. APIKey is only used by
// the CLI; HTTP callers send their own key per request.
type GeminiConfig struct {
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"min=0"`
}

type SummaryConfig struct {
	Provider      string `yaml:"provider" validate:"oneof=gemini openai"`
	OpenAIKey     string `yaml:"openai_api_key" validate:"required_if=Provider openai"`
	OpenAIBaseURL string `yaml:"openai_base_url" validate:"omitempty,url"`
	OpenAIModel   string `yaml:"openai_model"`
}

type PipelineConfig struct {
	ChunkSeconds   int           `yaml:"chunk_seconds" validate:"min=1,max=3600"`
	MaxAttempts    int           `yaml:"max_attempts" validate:"min=1,max=10"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" validate:"min=0"`
}

type StorageConfig struct {
	Driver        string      `yaml:"driver" validate:"oneof=sqlite postgres redis"`
	SQLitePath    string      `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	DatabaseURL   string      `yaml:"database_url" validate:"required_if=Driver postgres"`
	RedisAddr     string      `yaml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string      `yaml:"redis_password"`
	RedisDB       int         `yaml:"redis_db" validate:"min=0"`
	AudioBackend  string      `yaml:"audio_backend" validate:"oneof=fs minio"`
	AudioDir      string      `yaml:"audio_dir" validate:"required_if=AudioBackend fs"`
	Minio         MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AudioConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	TempDir     string `yaml:"temp_dir"`
}

type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

var validate = validator.New()

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(os.ExpandEnv(path))
		if err != nil {
			return nil, apperrors.Kind(apperrors.ErrInvalidConfig, fmt.Errorf("failed to read config file: %w", err))
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Kind(apperrors.ErrInvalidConfig, fmt.Errorf("failed to parse YAML: %w", err))
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, apperrors.Kind(apperrors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and the cross-section rules tags cannot express
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.Kind(apperrors.ErrInvalidConfig, describe(err))
	}
	if c.Storage.AudioBackend == "minio" && c.Storage.Minio.Endpoint == "" {
		return apperrors.Kind(apperrors.ErrInvalidConfig, apperrors.RequiredField("storage.minio.endpoint"))
	}
	return nil
}

// ValidateStore checks only the job store fields of s, for stores opened
// outside the main configuration
func ValidateStore(s StorageConfig) error {
	err := validate.StructPartial(s, "Driver", "SQLitePath", "DatabaseURL", "RedisAddr", "RedisDB")
	if err != nil {
		return apperrors.Kind(apperrors.ErrInvalidConfig, describe(err))
	}
	return nil
}

// MaxUploadBytes is the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Namespace())
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s out of range (%s=%s)", field, fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return apperrors.New(strings.Join(msgs, "; "))
}
