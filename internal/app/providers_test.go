package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"echoscript/internal/app/api/openai/chat"
	"echoscript/internal/app/converter"
	"echoscript/internal/app/repository/sqlite"
	"echoscript/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.SQLitePath = filepath.Join(dir, "jobs.db")
	cfg.Storage.AudioDir = filepath.Join(dir, "audio")
	cfg.Log.Level = "error"
	return cfg
}

func TestInitializeApp(t *testing.T) {
	cfg := testConfig(t)

	app, cleanup, err := InitializeApp(context.Background(), cfg, converter.ProgressConfig{})
	require.NoError(t, err)
	defer cleanup()

	assert.Same(t, cfg, app.Config)
	assert.IsType(t, &sqlite.SQLiteDB{}, app.Store)
	assert.Equal(t, config.DefaultModel, app.Client.Model())
	require.NotNil(t, app.Processor)
	require.NotNil(t, app.Converter)

	w := httptest.NewRecorder()
	app.Server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestOpenJobDAO_UnknownDriver(t *testing.T) {
	_, err := OpenJobDAO(context.Background(), config.StorageConfig{Driver: "mongo"})
	assert.EqualError(t, err, `unknown store driver "mongo"`)
}

func TestProvideSummarizer(t *testing.T) {
	cfg := testConfig(t)
	client := provideGeminiClient(cfg, zap.NewNop())

	assert.Same(t, client, provideSummarizer(cfg, client, zap.NewNop()))

	cfg.Summary.Provider = "openai"
	cfg.Summary.OpenAIKey = "sk-test"
	assert.IsType(t, &chat.Summarizer{}, provideSummarizer(cfg, client, zap.NewNop()))
}

func TestProvideProcessorConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.ChunkSeconds = 120

	pc := provideProcessorConfig(cfg)
	assert.Equal(t, 120, pc.ChunkSeconds)
	assert.Equal(t, config.DefaultMaxAttempts, pc.MaxAttempts)
	assert.Equal(t, int64(config.DefaultMaxUploadMB)<<20, provideServerConfig(cfg).MaxUploadBytes)
}

