package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.insertEvent(ctx, llmRequestTable,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "request_body", "response_body"},
		[]any{data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
			data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody},
	)
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := r.selectEvents(llmRequestTable, opts)
	if opts.Purpose != "" {
		sel.Where(entsql.EQ(sel.C("purpose"), opts.Purpose))
	}
	var out []LLMRequestEvent
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

// GetLLMEvent returns one event by id, or nil when absent.
func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error) {
	t := entsql.Table(llmRequestTable)
	sel := entsql.Dialect(r.drv.Dialect()).Select().From(t).Where(entsql.EQ(t.C("id"), id))
	var out []LLMRequestEvent
	if err := r.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}
