// Package config loads pathwise configuration from PATHWISE_* environment
// variables, with command line flags taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/store"
)

// Flag names shared by the commands that register them.
const (
	FlagDB         = "db"
	FlagContent    = "content"
	FlagGatewayURL = "gateway-url"
	FlagLogFile    = "log-file"
)

// Config holds all application configuration.
type Config struct {
	LLM     llm.Config
	Gateway GatewayConfig
	Engine  EngineConfig
	Server  ServerConfig
	Log     LogConfig

	// ContentDir is a directory of YAML content files. Empty selects the
	// built-in sample course.
	ContentDir string

	// DBPath is the SQLite database file.
	DBPath string

	// RedisURL enables the Redis progress mirror when set.
	RedisURL string
}

// GatewayConfig selects where generation and grading calls go.
type GatewayConfig struct {
	// URL of a remote `pathwise serve` instance. Empty calls the LLM
	// provider in process.
	URL     string
	Timeout time.Duration
}

// EngineConfig holds learning path options.
type EngineConfig struct {
	EntryAnalysis  bool
	FinalQuestions int
}

// ServerConfig holds the gateway HTTP service settings.
type ServerConfig struct {
	Addr string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Mode  string
	Level string
	File  string
}

// Load reads configuration from the environment. The database path is
// resolved and its directory created.
func Load() (*Config, error) {
	timeout, err := envDuration("PATHWISE_GATEWAY_TIMEOUT", gateway.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	logFile, err := defaultLogFile()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LLM: llm.ConfigFromEnv(),
		Gateway: GatewayConfig{
			URL:     envStr("PATHWISE_GATEWAY_URL", ""),
			Timeout: timeout,
		},
		Engine: EngineConfig{
			EntryAnalysis:  envBool("PATHWISE_ENTRY_ANALYSIS", true),
			FinalQuestions: envInt("PATHWISE_FINAL_QUESTIONS", engine.DefaultFinalQuestions),
		},
		Server: ServerConfig{
			Addr: envStr("PATHWISE_ADDR", "127.0.0.1:8088"),
		},
		Log: LogConfig{
			Mode:  envStr("PATHWISE_LOG_MODE", "dev"),
			Level: envStr("PATHWISE_LOG_LEVEL", "info"),
			File:  envStr("PATHWISE_LOG_FILE", logFile),
		},
		ContentDir: envStr("PATHWISE_CONTENT_DIR", ""),
		RedisURL:   envStr("PATHWISE_REDIS_URL", ""),
	}

	cfg.DBPath, err = store.DefaultDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	return cfg, nil
}

// ApplyFlags overlays flags that were set explicitly. Unregistered flags
// are skipped so every command can share this call.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	set := func(name string, dst *string) {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			return
		}
		*dst = f.Value.String()
	}
	set(FlagContent, &c.ContentDir)
	set(FlagGatewayURL, &c.Gateway.URL)
	set(FlagLogFile, &c.Log.File)

	if f := fs.Lookup(FlagDB); f != nil && f.Changed {
		c.DBPath = f.Value.String()
		if err := store.EnsureDir(c.DBPath); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}
	return nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Engine.FinalQuestions <= 0 {
		return fmt.Errorf("PATHWISE_FINAL_QUESTIONS must be positive, got %d", c.Engine.FinalQuestions)
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("PATHWISE_GATEWAY_TIMEOUT must be positive, got %s", c.Gateway.Timeout)
	}
	// A remote gateway owns the provider, so local keys are optional.
	if c.Gateway.URL == "" {
		if err := c.LLM.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EngineOptions converts the engine settings.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		AnalyzeEntry:   c.Engine.EntryAnalysis,
		FinalQuestions: c.Engine.FinalQuestions,
	}
}

// defaultLogFile is $XDG_STATE_HOME/pathwise/pathwise.log, falling back to
// ~/.local/state.
func defaultLogFile() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "pathwise", "pathwise.log"), nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
