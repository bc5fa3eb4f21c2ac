package report

import (
	"sort"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/store"
)

// Usage aggregates LLM request events for one (purpose, model) pair.
type Usage struct {
	Purpose      string
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
	// CostUSD is zero for models without a known price.
	CostUSD float64
}

// Summarize groups events by purpose and model, sorted by purpose then
// model.
func Summarize(events []store.LLMRequestEvent) []Usage {
	type key struct{ purpose, model string }
	byKey := make(map[key]*Usage)
	latency := make(map[key]int64)

	for _, e := range events {
		k := key{e.Purpose, e.Model}
		u, ok := byKey[k]
		if !ok {
			u = &Usage{Purpose: e.Purpose, Model: e.Model}
			byKey[k] = u
		}
		u.Calls++
		if !e.Success {
			u.Failures++
		}
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		latency[k] += e.LatencyMs
	}

	out := make([]Usage, 0, len(byKey))
	for k, u := range byKey {
		u.AvgLatencyMs = latency[k] / int64(u.Calls)
		if c := llm.LookupCost(u.Model); c != nil {
			u.CostUSD = c.Cost(u.InputTokens, u.OutputTokens)
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Purpose != out[j].Purpose {
			return out[i].Purpose < out[j].Purpose
		}
		return out[i].Model < out[j].Model
	})
	return out
}
