package provider

import (
	"context"
	"sync"
)

// MockClient is a test double for Client.
// It supports fixed responses, sequential responses, and custom handlers.
type MockClient struct {
	mu           sync.Mutex
	responses    []Response
	responseIdx  int
	err          error
	usage        *TokenUsage
	completeFunc func(ctx context.Context, req Request) (*Response, error)

	// Calls tracks all requests for assertions.
	Calls []Request
}

// NewMockClient creates a mock that returns the given text responses in order.
func NewMockClient(contents ...string) *MockClient {
	m := &MockClient{}
	for _, c := range contents {
		m.responses = append(m.responses, Response{Content: c})
	}
	return m
}

// WithResponses configures sequential responses.
// Each call to Complete returns the next response in the list.
// Cycles back to the beginning after exhausting all responses.
func (m *MockClient) WithResponses(responses ...Response) *MockClient {
	m.responses = responses
	return m
}

// WithError configures the mock to always return an error.
func (m *MockClient) WithError(err error) *MockClient {
	m.err = err
	return m
}

// WithUsage attaches usage to every scripted response that carries none.
func (m *MockClient) WithUsage(u TokenUsage) *MockClient {
	m.usage = &u
	return m
}

// WithCompleteFunc sets a custom handler for Complete calls.
// This takes precedence over fixed responses.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req Request) (*Response, error)) *MockClient {
	m.completeFunc = fn
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Callers reuse their message slices between calls.
	req.Messages = append([]Message(nil), req.Messages...)
	m.Calls = append(m.Calls, req)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}

	if m.err != nil {
		return nil, m.err
	}

	var resp Response
	if len(m.responses) > 0 {
		resp = m.responses[m.responseIdx%len(m.responses)]
		m.responseIdx++
	}
	if resp.Usage == nil && m.usage != nil {
		u := *m.usage
		resp.Usage = &u
	}
	if resp.FinishReason == "" {
		resp.FinishReason = "stop"
		if len(resp.ToolCalls) > 0 {
			resp.FinishReason = "tool_calls"
		}
	}
	if resp.Model == "" {
		resp.Model = req.Model
	}
	return &resp, nil
}

// Reset clears the call history and response index.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.responseIdx = 0
}

// CallCount returns the number of times Complete was called.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if no calls made.
func (m *MockClient) LastCall() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	req := m.Calls[len(m.Calls)-1]
	return &req
}
