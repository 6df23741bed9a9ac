package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/monoplan/internal/config"
	"github.com/vk/monoplan/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	model  *config.Model
	env    map[string]string
	// rootDir is the workspace root directory, used to anchor relative
	// input and cache paths.
	rootDir string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, a loaded workspace
// model, and an immutable environment snapshot. Reports go to outW; logs go
// to errW so the report stream stays clean.
func NewApp(outW, errW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	env, err := environmentSnapshot(appConfig.EnvFile)
	if err != nil {
		panic(err)
	}
	logger.Debug("Environment snapshot captured.", "var_count", len(env))

	return &App{
		outW:    outW,
		logger:  logger,
		model:   model,
		env:     env,
		rootDir: workspaceRoot(appConfig.ConfigPath),
	}
}

// Model returns the loaded workspace model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// workspaceRoot derives the workspace root directory from the config path,
// which may name either the root config file or its directory.
func workspaceRoot(configPath string) string {
	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		return configPath
	}
	return filepath.Dir(configPath)
}
