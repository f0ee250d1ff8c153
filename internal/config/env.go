package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvFiles are the dotenv files LoadEnv looks for, in order
var EnvFiles = []string{
	".env",
	".env.local",
	"../.env",
	"../../.env",
}

// LoadEnv loads the first dotenv file found. Variables already set in the
// process environment are not overridden. It returns the loaded path, or
// "" when no file exists.
func LoadEnv() (string, error) {
	for _, envPath := range EnvFiles {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}
	return "", nil
}

// applyEnv overlays environment variables onto cfg
func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "ECHOSCRIPT_PORT")
	if err := setInt(&cfg.Server.MaxUploadMB, "ECHOSCRIPT_MAX_UPLOAD_MB"); err != nil {
		return err
	}
	if origins := os.Getenv("ECHOSCRIPT_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}

	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "ECHOSCRIPT_MODEL")
	if err := setDuration(&cfg.Gemini.RequestTimeout, "ECHOSCRIPT_REQUEST_TIMEOUT"); err != nil {
		return err
	}

	setString(&cfg.Summary.Provider, "ECHOSCRIPT_SUMMARY_PROVIDER")
	setString(&cfg.Summary.OpenAIKey, "OPENAI_API_KEY")
	setString(&cfg.Summary.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Summary.OpenAIModel, "ECHOSCRIPT_OPENAI_MODEL")

	if err := setInt(&cfg.Pipeline.ChunkSeconds, "ECHOSCRIPT_CHUNK_SECONDS"); err != nil {
		return err
	}
	if err := setInt(&cfg.Pipeline.MaxAttempts, "ECHOSCRIPT_MAX_ATTEMPTS"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Pipeline.RetryBaseDelay, "ECHOSCRIPT_RETRY_BASE_DELAY"); err != nil {
		return err
	}

	setString(&cfg.Storage.Driver, "ECHOSCRIPT_STORE")
	setString(&cfg.Storage.SQLitePath, "ECHOSCRIPT_SQLITE_PATH")
	setString(&cfg.Storage.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Storage.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Storage.RedisPassword, "REDIS_PASSWORD")
	if err := setInt(&cfg.Storage.RedisDB, "REDIS_DB"); err != nil {
		return err
	}
	setString(&cfg.Storage.AudioBackend, "ECHOSCRIPT_AUDIO_BACKEND")
	setString(&cfg.Storage.AudioDir, "ECHOSCRIPT_AUDIO_DIR")
	setString(&cfg.Storage.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Storage.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Storage.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Storage.Minio.Bucket, "MINIO_BUCKET")
	if err := setBool(&cfg.Storage.Minio.UseSSL, "MINIO_USE_SSL"); err != nil {
		return err
	}

	setString(&cfg.Audio.FFmpegPath, "FFMPEG_PATH")
	setString(&cfg.Audio.FFprobePath, "FFPROBE_PATH")
	setString(&cfg.Audio.TempDir, "ECHOSCRIPT_TMP_DIR")

	setString(&cfg.Log.Level, "ECHOSCRIPT_LOG_LEVEL")
	return setBool(&cfg.Log.Development, "ECHOSCRIPT_DEV")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
