package provider

import (
	"encoding/json"
	"time"
)

// Request configures a completion call.
type Request struct {
	// Model is the provider-specific model identifier, e.g. "gpt-4o".
	Model string `json:"model"`

	// Messages is the conversation to send, in chronological order.
	Messages []Message `json:"messages"`

	// Tools lists the operations the model may call.
	Tools []Tool `json:"tools,omitempty"`

	// ToolChoice is one of ToolChoiceAuto, ToolChoiceNone or ToolChoiceRequired.
	// Empty means provider default.
	ToolChoice ToolChoice `json:"tool_choice,omitempty"`

	// Temperature controls response randomness. Nil means provider default.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens limits the response length. 0 means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// ToolChoice controls whether the model must, may, or must not call a tool.
type ToolChoice string

// Tool choice modes.
const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceNone     ToolChoice = "none"
	ToolChoiceRequired ToolChoice = "required"
)

// Role identifies the message sender.
type Role string

// Message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one conversation entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Name is the tool name for tool-role messages.
	Name string `json:"name,omitempty"`

	// ToolCallID links a tool-role message to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// ToolCalls are the calls requested by an assistant message.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Timestamp is when the message entered the conversation.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolMessage creates a tool-role message carrying the result of call.
func NewToolMessage(call ToolCall, content string) Message {
	return Message{Role: RoleTool, Name: call.Name, ToolCallID: call.ID, Content: content}
}

// IsSystem reports whether the message is a system instruction.
func (m Message) IsSystem() bool {
	return m.Role == RoleSystem
}

// Tool defines an operation the model may invoke.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// ToolCall is a tool invocation requested by the model.
// Arguments is the raw JSON object the model produced; it may be malformed.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Response is the output of a completion call.
type Response struct {
	// Content is the text response.
	Content string `json:"content"`

	// ToolCalls contains the tool invocations requested by the model.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Usage is the authoritative token usage. Nil when the provider did not report it.
	Usage *TokenUsage `json:"usage,omitempty"`

	// Model is the model that actually served the request.
	Model string `json:"model,omitempty"`

	// FinishReason indicates why generation stopped ("stop", "length", "tool_calls").
	FinishReason string `json:"finish_reason,omitempty"`
}

// AssistantMessage converts the response into the assistant message that
// should be appended to the conversation.
func (r *Response) AssistantMessage() Message {
	return Message{Role: RoleAssistant, Content: r.Content, ToolCalls: r.ToolCalls}
}

// TokenUsage is provider-reported token consumption.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add combines token usage from another TokenUsage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Total returns TotalTokens, or the sum of prompt and completion tokens when
// the provider left it unset.
func (u TokenUsage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// Float64 returns a pointer to v, for Request.Temperature.
func Float64(v float64) *float64 {
	return &v
}
