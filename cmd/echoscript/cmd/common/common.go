// Package common holds the flags and setup shared by every command.
package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"echoscript/internal/app"
	"echoscript/internal/app/converter"
	"echoscript/internal/app/credential"
	"echoscript/internal/config"
)

// Persistent flags, bound by the root command
var (
	ConfigPath string
	APIKey     string
	Verbose    bool
)

// LoadConfig loads dotenv files, the optional YAML file and the environment
func LoadConfig() (*config.Config, error) {
	if _, err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, err
	}
	if Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// ResolveAPIKey returns --api-key, falling back to GEMINI_API_KEY, after the
// format precheck
func ResolveAPIKey(cfg *config.Config) (string, error) {
	key := APIKey
	if key == "" {
		key = cfg.Gemini.APIKey
	}
	if err := credential.CheckFormat(key); err != nil {
		return "", fmt.Errorf("%w (set --api-key or GEMINI_API_KEY)", err)
	}
	return key, nil
}

// Setup loads configuration and wires the application
func Setup(ctx context.Context, progress converter.ProgressConfig) (*app.App, func(), error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return app.InitializeApp(ctx, cfg, progress)
}

// SetupWithKey is Setup plus ResolveAPIKey
func SetupWithKey(ctx context.Context, progress converter.ProgressConfig) (*app.App, string, func(), error) {
	a, cleanup, err := Setup(ctx, progress)
	if err != nil {
		return nil, "", nil, err
	}
	key, err := ResolveAPIKey(a.Config)
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	return a, key, cleanup, nil
}

// PrintJSON writes v indented to w
func PrintJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
