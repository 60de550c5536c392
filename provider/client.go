// Package provider defines the completion-provider contract consumed by ltmkit.
//
// ltmkit never talks to a model vendor directly. Callers adapt their transport
// (an HTTP SDK, a gateway, a local sidecar) to the Client interface and hand it
// to the components that need completions: the memory read loop, the state
// reconstructor, the deletion planner and the agent.
//
// # Usage
//
//	resp, err := client.Complete(ctx, provider.Request{
//	    Model:    "gpt-4o",
//	    Messages: []provider.Message{provider.NewUserMessage("Hello!")},
//	})
//	if err != nil {
//	    return err
//	}
//	if resp.Usage != nil {
//	    tracker.Record(model.Family(req.Model), *resp.Usage)
//	}
//
// Providers must report usage for cost tracking and token-count correction to
// work. A nil Usage is tolerated everywhere: the update is skipped.
//
// # Testing
//
// MockClient returns scripted responses and records every request:
//
//	mock := provider.NewMockClient().WithResponses(
//	    provider.Response{Content: "plan"},
//	    provider.Response{ToolCalls: []provider.ToolCall{{Name: "done", Arguments: []byte(`{"results":"ok"}`)}}},
//	)
package provider

import "context"

// Client is the completion interface ltmkit consumes.
// Calls are blocking; the context carries any caller-imposed timeout.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (*Response, error)

// Complete implements Client.
func (f ClientFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
