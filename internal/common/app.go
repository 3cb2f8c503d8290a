// Package common holds the setup shared by CLI commands.
package common

import (
	"errors"
	"fmt"
	"os"

	"github.com/dtnitsch/cbsl-assistant/models"
	dbpkg "github.com/dtnitsch/cbsl-assistant/pkg/db"
	"github.com/dtnitsch/cbsl-assistant/pkg/detector"
	"github.com/dtnitsch/cbsl-assistant/pkg/llm"
	"github.com/dtnitsch/cbsl-assistant/pkg/logger"
	"github.com/dtnitsch/cbsl-assistant/pkg/pipeline"
	"github.com/dtnitsch/cbsl-assistant/pkg/retriever"
	"github.com/dtnitsch/cbsl-assistant/pkg/synthesizer"
	"github.com/dtnitsch/cbsl-assistant/pkg/translator"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// LoadConfig layers the config file, the .env file, the environment and the
// command-line flags, in that order.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if envFile := c.String("env-file"); envFile != "" {
		// existing environment variables win over the file
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	cfg.ApplyEnv()

	if c.IsSet("db") {
		cfg.Storage.Path = c.String("db")
	}
	if c.IsSet("log-env") {
		cfg.Log.Env = c.String("log-env")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// App is everything a command that answers questions needs.
type App struct {
	Config   *models.Config
	Logger   *zap.Logger
	Store    *dbpkg.DB
	Pipeline *pipeline.Pipeline
}

// OpenStore loads the config and opens the interaction log without touching
// the model configuration.
func OpenStore(c *cli.Context) (*models.Config, *dbpkg.DB, error) {
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	database, err := dbpkg.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, database, nil
}

// NewApp builds the full pipeline from the command context.
func NewApp(c *cli.Context) (*App, error) {
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	database, err := dbpkg.Open(cfg.Storage.Path)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	hinter := detector.NewHinter()
	hinter.Warm()

	completer := llm.NewOpenAIClient(cfg.LLM)
	p := pipeline.New(
		retriever.New(cfg.Source, log.Named("retriever")),
		synthesizer.New(completer, cfg.LLM.MaxContextChars),
		translator.New(completer),
		database,
		log.Named("pipeline"),
		pipeline.Options{
			AppendRetries: cfg.Storage.AppendRetries,
			Hinter:        hinter,
		},
	)

	log.Debug("application ready",
		zap.String("db", database.Path()),
		zap.String("model", cfg.LLM.Model),
		zap.String("search_url", cfg.Source.SearchURL),
	)

	return &App{
		Config:   cfg,
		Logger:   log,
		Store:    database,
		Pipeline: p,
	}, nil
}

// Close releases the store and flushes the logger.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.Logger.Sync() // stderr sync errors are not actionable
}
