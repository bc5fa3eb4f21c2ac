package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/abhisek/pathwise/internal/engine"
	"github.com/abhisek/pathwise/internal/gateway"
)

// isolate points every path variable at a temp dir and clears the rest.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, k := range []string{
		"PATHWISE_DB", "PATHWISE_CONTENT_DIR", "PATHWISE_REDIS_URL",
		"PATHWISE_GATEWAY_URL", "PATHWISE_GATEWAY_TIMEOUT",
		"PATHWISE_ENTRY_ANALYSIS", "PATHWISE_FINAL_QUESTIONS", "PATHWISE_ADDR",
		"PATHWISE_LOG_MODE", "PATHWISE_LOG_LEVEL", "PATHWISE_LOG_FILE",
		"PATHWISE_LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "PATHWISE_ANTHROPIC_API_KEY",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := filepath.Join(dir, "data", "pathwise", "pathwise.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
	if want := filepath.Join(dir, "state", "pathwise", "pathwise.log"); cfg.Log.File != want {
		t.Errorf("Log.File = %q, want %q", cfg.Log.File, want)
	}
	if cfg.Gateway.Timeout != gateway.DefaultTimeout {
		t.Errorf("Gateway.Timeout = %s, want %s", cfg.Gateway.Timeout, gateway.DefaultTimeout)
	}
	if !cfg.Engine.EntryAnalysis {
		t.Error("Engine.EntryAnalysis = false, want true")
	}
	if cfg.Engine.FinalQuestions != engine.DefaultFinalQuestions {
		t.Errorf("Engine.FinalQuestions = %d, want %d", cfg.Engine.FinalQuestions, engine.DefaultFinalQuestions)
	}
	if cfg.LLM.Provider != "mock" {
		t.Errorf("LLM.Provider = %q, want mock", cfg.LLM.Provider)
	}
	if cfg.ContentDir != "" || cfg.RedisURL != "" || cfg.Gateway.URL != "" {
		t.Errorf("optional settings should be empty: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("PATHWISE_GATEWAY_URL", "http://gw:8088")
	t.Setenv("PATHWISE_GATEWAY_TIMEOUT", "10s")
	t.Setenv("PATHWISE_ENTRY_ANALYSIS", "false")
	t.Setenv("PATHWISE_FINAL_QUESTIONS", "8")
	t.Setenv("PATHWISE_REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("PATHWISE_ADDR", ":9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gateway.URL != "http://gw:8088" || cfg.Gateway.Timeout != 10*time.Second {
		t.Errorf("Gateway = %+v", cfg.Gateway)
	}
	opts := cfg.EngineOptions()
	if opts.AnalyzeEntry || opts.FinalQuestions != 8 {
		t.Errorf("EngineOptions() = %+v", opts)
	}
	if cfg.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_BadTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("PATHWISE_GATEWAY_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparsable timeout")
	}
}

func TestApplyFlags(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(FlagDB, "", "")
	fs.String(FlagContent, "", "")
	fs.String(FlagGatewayURL, "", "")
	fs.String(FlagLogFile, "", "")

	db := filepath.Join(dir, "custom", "p.db")
	if err := fs.Parse([]string{"--db", db, "--content", "/courses"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	before := cfg.Log.File
	if err := cfg.ApplyFlags(fs); err != nil {
		t.Fatalf("ApplyFlags() error = %v", err)
	}

	if cfg.DBPath != db {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, db)
	}
	if cfg.ContentDir != "/courses" {
		t.Errorf("ContentDir = %q", cfg.ContentDir)
	}
	if cfg.Log.File != before {
		t.Errorf("unset flag changed Log.File to %q", cfg.Log.File)
	}
}

func TestValidate(t *testing.T) {
	isolate(t)
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero questions", func(c *Config) { c.Engine.FinalQuestions = 0 }, true},
		{"zero timeout", func(c *Config) { c.Gateway.Timeout = 0 }, true},
		{"missing key", func(c *Config) { c.LLM.Provider = "anthropic" }, true},
		{"remote gateway skips key", func(c *Config) {
			c.LLM.Provider = "anthropic"
			c.Gateway.URL = "http://gw"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
