package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_SequentialResponses(t *testing.T) {
	mock := NewMockClient("first", "second")
	ctx := context.Background()

	for _, want := range []string{"first", "second", "first"} {
		resp, err := mock.Complete(ctx, Request{Model: "gpt-4o"})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content)
		assert.Equal(t, "gpt-4o", resp.Model)
		assert.Equal(t, "stop", resp.FinishReason)
	}
	assert.Equal(t, 3, mock.CallCount())
}

func TestMockClient_ToolCallFinishReason(t *testing.T) {
	mock := NewMockClient().WithResponses(Response{
		ToolCalls: []ToolCall{{ID: "1", Name: "done", Arguments: []byte(`{}`)}},
	})

	resp, err := mock.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "tool_calls", resp.FinishReason)
	assert.Nil(t, resp.Usage)
}

func TestMockClient_WithUsage(t *testing.T) {
	mock := NewMockClient("x").WithUsage(TokenUsage{PromptTokens: 12, CompletionTokens: 3})

	resp, err := mock.Complete(context.Background(), Request{})
	require.NoError(t, err)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.Total())
}

func TestMockClient_Error(t *testing.T) {
	mock := NewMockClient().WithError(ErrUnavailable)

	_, err := mock.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsRetryable(err))
}

func TestMockClient_CanceledContext(t *testing.T) {
	mock := NewMockClient("never")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.Complete(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestMockClient_RecordsCopyOfMessages(t *testing.T) {
	mock := NewMockClient("ok")
	msgs := []Message{NewUserMessage("a")}

	_, err := mock.Complete(context.Background(), Request{Messages: msgs})
	require.NoError(t, err)
	msgs[0].Content = "mutated"

	last := mock.LastCall()
	require.NotNil(t, last)
	assert.Equal(t, "a", last.Messages[0].Content)

	mock.Reset()
	assert.Nil(t, mock.LastCall())
}

func TestMockClient_CompleteFunc(t *testing.T) {
	mock := NewMockClient().WithCompleteFunc(func(_ context.Context, req Request) (*Response, error) {
		return &Response{Content: string(req.Messages[0].Role)}, nil
	})

	resp, err := mock.Complete(context.Background(), Request{Messages: []Message{NewSystemMessage("s")}})
	require.NoError(t, err)
	assert.Equal(t, "system", resp.Content)
}

func TestError_Wrapping(t *testing.T) {
	err := NewError("openai", "complete", ErrRateLimited, true)
	assert.Equal(t, "openai complete: rate limited", err.Error())
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.True(t, IsRetryable(err))

	plain := &Error{Op: "complete", Err: ErrMalformedOutput}
	assert.Equal(t, "complete: malformed model output", plain.Error())
	assert.True(t, IsMalformed(plain))
	assert.False(t, IsRetryable(plain))
}

func TestClientFunc(t *testing.T) {
	var c Client = ClientFunc(func(context.Context, Request) (*Response, error) {
		return &Response{Content: "fn"}, nil
	})
	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "fn", resp.Content)
}

func TestMessageHelpers(t *testing.T) {
	call := ToolCall{ID: "c1", Name: "read_memory"}
	msg := NewToolMessage(call, "result")
	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, "c1", msg.ToolCallID)
	assert.Equal(t, "read_memory", msg.Name)
	assert.True(t, NewSystemMessage("x").IsSystem())
	assert.False(t, NewAssistantMessage("x").IsSystem())

	resp := &Response{Content: "hi", ToolCalls: []ToolCall{call}}
	am := resp.AssistantMessage()
	assert.Equal(t, RoleAssistant, am.Role)
	assert.Len(t, am.ToolCalls, 1)

	var u TokenUsage
	u.Add(TokenUsage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3})
	assert.Equal(t, 3, u.Total())
	assert.Equal(t, 0.5, *Float64(0.5))
}
