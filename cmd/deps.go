package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/config"
	"github.com/abhisek/pathwise/internal/content"
	"github.com/abhisek/pathwise/internal/gateway"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/store"
)

// env holds what most commands need: configuration, a logger, the
// store and the content library.
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *store.Store
	library *content.Library
	closers []func()
}

// loadConfig reads the environment and applies the command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the command's logger. Interactive commands log to the
// configured file because the terminal belongs to the UI.
func newLogger(cfg *config.Config, toFile bool) (*logger.Logger, error) {
	opts := logger.Options{Mode: cfg.Log.Mode, Level: cfg.Log.Level}
	if toFile {
		opts.File = cfg.Log.File
	}
	return logger.New(opts)
}

// setup builds an env. Callers must call Close.
func setup(cmd *cobra.Command, logToFile bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg, logToFile)
	if err != nil {
		return nil, err
	}
	rt := &env{cfg: cfg, log: log}
	rt.closers = append(rt.closers, log.Sync)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.store = st
	rt.closers = append(rt.closers, func() { st.Close() })

	if cfg.ContentDir != "" {
		rt.library, err = content.LoadDir(cfg.ContentDir, log)
	} else {
		rt.library, err = content.Sample(log)
	}
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load content: %w", err)
	}
	return rt, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *env) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// goal resolves a goal id against the library.
func (rt *env) goal(id string) (content.Goal, error) {
	g, err := rt.library.Goal(id)
	if errors.Is(err, content.ErrGoalNotFound) {
		return content.Goal{}, fmt.Errorf("%w (run `pathwise goals` to list goals)", err)
	}
	return g, err
}

// backend builds the error-returning gateway: a remote service when a URL
// is configured, the LLM provider in process otherwise.
func (rt *env) backend(ctx context.Context) (gateway.Gateway, error) {
	if err := rt.cfg.Validate(); err != nil {
		return nil, err
	}
	if url := rt.cfg.Gateway.URL; url != "" {
		rt.log.Info("using remote gateway", "url", url)
		return gateway.NewClient(url, nil), nil
	}
	provider, err := llm.NewProvider(ctx, rt.cfg.LLM, rt.store.EventRepo(), rt.log)
	if err != nil {
		return nil, err
	}
	rt.log.Info("using in-process gateway", "provider", rt.cfg.LLM.Provider, "model", provider.ModelID())
	return gateway.NewLLM(provider, gateway.DefaultLLMConfig()), nil
}

// gateway wraps the backend with per-call timeouts and fallbacks. Only
// final test and practice question failures reach the caller.
func (rt *env) gateway(ctx context.Context) (*gateway.Resilient, error) {
	gw, err := rt.backend(ctx)
	if err != nil {
		return nil, err
	}
	return gateway.NewResilient(gw, rt.cfg.Gateway.Timeout, rt.log), nil
}

// progress builds the fire-and-forget progress reporter. The store is
// always written; Redis is mirrored when configured and reachable.
func (rt *env) progress(ctx context.Context) *progress.Reporter {
	trackers := []progress.Tracker{rt.store.ProgressRepo()}
	if url := rt.cfg.RedisURL; url != "" {
		redisTracker, err := progress.NewRedisTracker(ctx, url)
		if err != nil {
			rt.log.Warn("redis progress mirror disabled", "error", err)
		} else {
			trackers = append(trackers, redisTracker)
			rt.closers = append(rt.closers, func() { redisTracker.Close() })
		}
	}
	return progress.FireAndForget(progress.Fanout(trackers...), rt.log)
}
