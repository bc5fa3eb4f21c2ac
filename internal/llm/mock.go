package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned reply. A non-nil Err is returned as is.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays canned replies and records every request. Replies
// queued with On for the request's purpose (see WithPurpose) take
// precedence over the shared queue. With nothing queued it reports the
// provider as unavailable, which sends gateway calls down their fallback
// path.
type MockProvider struct {
	mu        sync.Mutex
	shared    []MockResponse
	byPurpose map[string][]MockResponse
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{shared: responses, byPurpose: map[string][]MockResponse{}}
}

// AddResponse appends to the shared queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shared = append(m.shared, resp)
}

// On queues replies for requests carrying purpose.
func (m *MockProvider) On(purpose string, resps ...MockResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byPurpose[purpose] = append(m.byPurpose[purpose], resps...)
	return m
}

func pop(q *[]MockResponse) (MockResponse, bool) {
	if len(*q) == 0 {
		return MockResponse{}, false
	}
	next := (*q)[0]
	*q = (*q)[1:]
	return next, true
}

func (m *MockProvider) next(purpose string) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q := m.byPurpose[purpose]; len(q) > 0 {
		r, _ := pop(&q)
		m.byPurpose[purpose] = q
		return r, true
	}
	return pop(&m.shared)
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	r, ok := m.next(PurposeFrom(ctx))
	switch {
	case !ok:
		return nil, &ErrProviderUnavailable{}
	case r.Err != nil:
		return nil, r.Err
	}
	if err := validateResponse(req.Schema, r.Content); err != nil {
		return nil, err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
