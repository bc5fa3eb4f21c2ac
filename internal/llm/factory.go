package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/store"
)

// NewProvider builds the selected provider. Calls pass through retry, then
// the request log, then the vendor client; retry is omitted for
// single-attempt configs.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *logger.Logger) (Provider, error) {
	var base Provider
	if cfg.Provider == "mock" {
		base = NewMockProvider()
	} else {
		v, ok := lookupVendor(cfg.Provider)
		if !ok {
			return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
		}
		p, err := v.build(ctx, cfg.Endpoint())
		if err != nil {
			return nil, fmt.Errorf("initializing %s provider: %w", v.name, err)
		}
		base = p
	}
	return WithRetry(WithLogging(base, cfg.Provider, events, log), cfg.Retry), nil
}
