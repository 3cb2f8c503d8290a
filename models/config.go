// Package models defines data structures for configuration, retrieval and answers.
package models

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// QueryPlaceholder marks where the escaped question goes in SourceConfig.SearchURL.
const QueryPlaceholder = "{query}"

// ResponseMargin is the time reserved after the slowest answer for logging the
// interaction and writing the response.
const ResponseMargin = 10 * time.Second

// Config holds runtime configuration. Values come from a YAML file, then the
// environment, then CLI flags, each layer overriding the previous one.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Source  SourceConfig  `yaml:"source"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// SourceConfig describes the single official content source.
type SourceConfig struct {
	SearchURL        string        `yaml:"search_url"`
	Timeout          time.Duration `yaml:"timeout"`
	MinContentLength int           `yaml:"min_content_length"`
	ExtractMode      ExtractMode   `yaml:"extract_mode"`
	UserAgent        string        `yaml:"user_agent"`
	// Boilerplate replaces the built-in phrase list when non-empty.
	Boilerplate []string `yaml:"boilerplate"`
}

type LLMConfig struct {
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"`
	Model           string        `yaml:"model"`
	Temperature     float32       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxContextChars int           `yaml:"max_context_chars"`
}

type StorageConfig struct {
	Path          string `yaml:"path"`
	RecentLimit   int    `yaml:"recent_limit"`
	AppendRetries int    `yaml:"append_retries"`
}

type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":3000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 150 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Source: SourceConfig{
			SearchURL:        "https://www.cbsl.gov.lk/en/search/node?keys=" + QueryPlaceholder,
			Timeout:          15 * time.Second,
			MinContentLength: 200,
			ExtractMode:      ExtractModeBody,
			UserAgent:        "cbsl-assistant/1.0",
		},
		LLM: LLMConfig{
			BaseURL:         "https://api.openai.com/v1",
			Model:           "gpt-4o-mini",
			Temperature:     0.3,
			Timeout:         60 * time.Second,
			MaxContextChars: 12000,
		},
		Storage: StorageConfig{
			Path:        "logs/chatlogs.db",
			RecentLimit: 200,
		},
		Log: LogConfig{
			Env:   "development",
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML file over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from well-known environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("CBSL_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("LOG_ENV"); v != "" {
		c.Log.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// SlowestAnswer is the longest a question can take before its answer is
// ready: one fetch, one synthesis call and one translation call.
func (c *Config) SlowestAnswer() time.Duration {
	return c.Source.Timeout + 2*c.LLM.Timeout
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var errs []error
	if !strings.Contains(c.Source.SearchURL, QueryPlaceholder) {
		errs = append(errs, fmt.Errorf("source.search_url must contain %s", QueryPlaceholder))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, errors.New("source.timeout must be positive"))
	}
	if c.Source.MinContentLength <= 0 {
		errs = append(errs, errors.New("source.min_content_length must be positive"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %.2f out of range [0, 2]", c.LLM.Temperature))
	}
	// zero disables the write deadline
	if wt := c.Server.WriteTimeout; wt > 0 && wt < c.SlowestAnswer()+ResponseMargin {
		errs = append(errs, fmt.Errorf("server.write_timeout %s is shorter than the slowest answer %s plus %s",
			wt, c.SlowestAnswer(), ResponseMargin))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.Storage.AppendRetries < 0 {
		errs = append(errs, errors.New("storage.append_retries must not be negative"))
	}
	return errors.Join(errs...)
}

// RequireLLM reports a missing API key for commands that call the model.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is not set (export OPENAI_API_KEY or add it to the config file)")
	}
	return nil
}
