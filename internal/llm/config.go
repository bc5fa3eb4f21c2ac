package llm

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Endpoint is the connection to one vendor. BaseURL is optional.
type Endpoint struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Config selects a provider and holds the endpoints of every known vendor,
// keyed by provider name.
type Config struct {
	Provider  string
	Endpoints map[string]Endpoint
	Retry     RetryConfig
}

// Endpoint returns the endpoint of the selected provider.
func (c Config) Endpoint() Endpoint {
	return c.Endpoints[c.Provider]
}

// RetryConfig configures retries of transient provider failures.
// MaxAttempts of 1 disables retrying.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// vendor describes one provider backed by a remote API.
type vendor struct {
	name    string
	keyEnv  string // conventional key variable probed by discovery
	model   string
	baseURL string
	build   func(ctx context.Context, ep Endpoint) (Provider, error)
}

// vendors lists remote providers in discovery order.
var vendors = []vendor{
	{
		name: "gemini", keyEnv: "GEMINI_API_KEY", model: "gemini-2.0-flash",
		build: func(ctx context.Context, ep Endpoint) (Provider, error) { return NewGeminiProvider(ctx, ep) },
	},
	{
		name: "openai", keyEnv: "OPENAI_API_KEY", model: "gpt-4o-mini",
		build: func(_ context.Context, ep Endpoint) (Provider, error) { return NewOpenAIProvider(ep) },
	},
	{
		name: "anthropic", keyEnv: "ANTHROPIC_API_KEY", model: "claude-haiku-4-5",
		build: func(_ context.Context, ep Endpoint) (Provider, error) { return NewAnthropicProvider(ep) },
	},
	{
		// OpenRouter speaks the chat completions API.
		name: "openrouter", keyEnv: "OPENROUTER_API_KEY", model: "google/gemini-2.0-flash-exp",
		baseURL: "https://openrouter.ai/api/v1",
		build: func(_ context.Context, ep Endpoint) (Provider, error) {
			if ep.APIKey == "" {
				return nil, errMissingKey("openrouter")
			}
			return newOpenAICompatible("openrouter", ep), nil
		},
	},
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

// ProviderNames lists every accepted value of Config.Provider.
func ProviderNames() []string {
	names := make([]string, 0, len(vendors)+1)
	for _, v := range vendors {
		names = append(names, v.name)
	}
	return append(names, "mock")
}

func errMissingKey(name string) error {
	return fmt.Errorf("PATHWISE_%s_API_KEY is required for the %s provider", strings.ToUpper(name), name)
}

// DefaultConfig returns the mock provider with single-attempt calls. The
// gateway owns its timeout budget, so retries are opt-in.
func DefaultConfig() Config {
	cfg := Config{
		Provider:  "mock",
		Endpoints: make(map[string]Endpoint, len(vendors)),
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
	}
	for _, v := range vendors {
		cfg.Endpoints[v.name] = Endpoint{Model: v.model, BaseURL: v.baseURL}
	}
	return cfg
}

// ConfigFromEnv builds a config from the environment. The first vendor key
// variable found (GEMINI_API_KEY, OPENAI_API_KEY, ...) picks the provider;
// PATHWISE_LLM_PROVIDER and PATHWISE_<VENDOR>_{API_KEY,MODEL,BASE_URL}
// override it.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	for _, v := range vendors {
		if k := os.Getenv(v.keyEnv); k != "" {
			ep := cfg.Endpoints[v.name]
			ep.APIKey = k
			cfg.Endpoints[v.name] = ep
			if cfg.Provider == "mock" {
				cfg.Provider = v.name
			}
		}
	}

	for _, v := range vendors {
		prefix := "PATHWISE_" + strings.ToUpper(v.name) + "_"
		ep := cfg.Endpoints[v.name]
		for suffix, dst := range map[string]*string{
			"API_KEY":  &ep.APIKey,
			"MODEL":    &ep.Model,
			"BASE_URL": &ep.BaseURL,
		} {
			if val := os.Getenv(prefix + suffix); val != "" {
				*dst = val
			}
		}
		cfg.Endpoints[v.name] = ep
	}

	if p := os.Getenv("PATHWISE_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if n, err := strconv.Atoi(os.Getenv("PATHWISE_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	return cfg
}

// Validate checks that the selected provider exists and has its API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	if _, ok := lookupVendor(c.Provider); !ok {
		return fmt.Errorf("unknown LLM provider %q (want one of %s)", c.Provider, strings.Join(ProviderNames(), ", "))
	}
	if c.Endpoint().APIKey == "" {
		return errMissingKey(c.Provider)
	}
	return nil
}
