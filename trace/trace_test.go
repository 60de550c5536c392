package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/ltmkit/provider"
)

func TestFormat(t *testing.T) {
	req := provider.Request{
		Temperature: provider.Float64(0.5),
		Messages: []provider.Message{
			provider.NewSystemMessage("be brief"),
			provider.NewUserMessage("hello"),
		},
	}
	resp := &provider.Response{Content: "hi"}

	want := "LLM temperature: 0.5\n--- SYSTEM\nbe brief\n--- USER\nhello\n--- Response:\nhi"
	assert.Equal(t, want, Format(req, resp))
}

func TestFormat_ToolCallsAndNilResponse(t *testing.T) {
	req := provider.Request{
		Model: "gpt-4o",
		Messages: []provider.Message{{
			Role:      provider.RoleAssistant,
			ToolCalls: []provider.ToolCall{{ID: "c1", Name: "done", Arguments: []byte(`{"results":"x"}`)}},
		}},
	}

	got := Format(req, nil)
	assert.Equal(t, "LLM temperature: default\nModel: gpt-4o\n--- ASSISTANT\n[tool call c1] done({\"results\":\"x\"})\n--- Response:\n", got)
}

func TestWriter_Numbering(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "traces")
	w, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "000041.txt"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	req := provider.Request{Messages: []provider.Message{provider.NewUserMessage("q")}}

	p1, err := w.Write(req, &provider.Response{Content: "a"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "000042.txt"), p1)

	p2, err := w.Write(req, &provider.Response{Content: "b"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "000043.txt"), p2)

	data, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Contains(t, string(data), "--- Response:\nb")
}

func TestWriter_EmptyDirStartsAtZero(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)

	p, err := w.Write(provider.Request{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "000000.txt", filepath.Base(p))
	assert.Equal(t, w.Dir(), filepath.Dir(p))
}
