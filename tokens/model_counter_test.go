package tokens

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/provider"
)

func TestTiktokenCounter(t *testing.T) {
	c, err := NewTiktokenCounter(EncodingCl100k)
	if err != nil {
		t.Fatalf("NewTiktokenCounter() error = %v", err)
	}
	if c.Encoding() != "cl100k_base" {
		t.Errorf("Encoding() = %q", c.Encoding())
	}
	if got := c.Count("hello world"); got != 2 {
		t.Errorf("Count(hello world) = %d, want 2", got)
	}
	if got := c.Count(""); got != 0 {
		t.Errorf("Count(\"\") = %d, want 0", got)
	}
	if !c.FitsInLimit("hello world", 2) || c.FitsInLimit("hello world", 1) {
		t.Error("FitsInLimit() boundary wrong")
	}

	long := strings.Repeat("hello world ", 50)
	cut := c.Truncate(long, 10)
	if c.Count(cut) > 10 {
		t.Errorf("Truncate() left %d tokens, want <= 10", c.Count(cut))
	}
	if !strings.HasPrefix(long, cut) {
		t.Error("Truncate() should return a prefix")
	}
	if c.Truncate("hello", 10) != "hello" {
		t.Error("Truncate() changed text already within limit")
	}
}

func TestModelCounter_ExactFamilies(t *testing.T) {
	c := NewModelCounter()

	if got := c.CountText(model.GPT4o, "hello world"); got != 2 {
		t.Errorf("CountText(gpt-4o) = %d, want 2", got)
	}
	if got := c.CountText(model.GPT35Turbo, "hello world"); got != 2 {
		t.Errorf("CountText(gpt-3.5-turbo) = %d, want 2", got)
	}
	if got := c.Factor(model.GPT4o); got != 1 {
		t.Errorf("Factor(gpt-4o) = %f, want 1", got)
	}

	// Observations never change exact counts.
	c.Observe(model.GPT4o, 2, 2000)
	if got := c.CountText(model.GPT4o, "hello world"); got != 2 {
		t.Errorf("CountText after Observe = %d, want 2", got)
	}
}

func TestModelCounter_MessageAndScriptOverhead(t *testing.T) {
	c := NewModelCounter()

	msgs := []provider.Message{
		provider.NewUserMessage("hello world"),
		provider.NewAssistantMessage("hello world"),
	}
	if got := c.CountMessages(model.GPT4o, msgs); got != 2*(MessageOverhead+2) {
		t.Errorf("CountMessages() = %d, want %d", got, 2*(MessageOverhead+2))
	}

	script := []string{"hello world", "hello world"}
	if got := c.Count(model.GPT4o, Payload{Script: script}); got != 2*(ScriptLineOverhead+2) {
		t.Errorf("Count(script) = %d, want %d", got, 2*(ScriptLineOverhead+2))
	}

	combined := c.Count(model.GPT4o, Payload{Messages: msgs, Script: script, Text: "hello world"})
	if combined != 2*(MessageOverhead+2)+2*(ScriptLineOverhead+2)+2 {
		t.Errorf("Count(combined) = %d", combined)
	}
}

func TestModelCounter_CorrectedFamilies(t *testing.T) {
	c := NewModelCounter()

	// cl100k gives 2; Anthropic starts at 1.1 plus 0.05 bias.
	if got := c.CountText(model.Claude3Haiku, "hello world"); got != 3 {
		t.Errorf("CountText(claude-3-haiku) = %d, want 3", got)
	}
	if got := c.Raw(model.Claude3Haiku, Payload{Text: "hello world"}); got != 2 {
		t.Errorf("Raw(claude-3-haiku) = %d, want 2", got)
	}
	// Aliases share the dated family's correction.
	if c.Factor("claude-3-haiku") != c.Factor(model.Claude3Haiku) {
		t.Error("alias and dated family should share a correction")
	}
	if got := c.Factor(model.Gemini15Pro); got != 1 {
		t.Errorf("Factor(gemini) = %f, want 1", got)
	}
}

func TestModelCounter_RecordUsage(t *testing.T) {
	c := NewModelCounter(WithCorrection(model.Claude3Sonnet, 1.0))
	msgs := []provider.Message{provider.NewUserMessage(strings.Repeat("memory ", 100))}
	raw := c.Raw(model.Claude3Sonnet, Payload{Messages: msgs})

	c.RecordUsage(model.Claude3Sonnet, msgs, nil)
	if c.Factor(model.Claude3Sonnet) != 1.0 {
		t.Fatal("nil usage should not change the factor")
	}

	c.RecordUsage(model.Claude3Sonnet, msgs, &provider.TokenUsage{PromptTokens: raw * 2})
	if got := c.Factor(model.Claude3Sonnet); got <= 1.0 || got >= 2.0 {
		t.Errorf("Factor() = %f, want in (1, 2)", got)
	}
}

func TestModelCounter_InstancesAreIndependent(t *testing.T) {
	a := NewModelCounter()
	b := NewModelCounter()

	before := b.Factor(model.Claude3Opus)
	a.Observe(model.Claude3Opus, 100, 1000)

	if b.Factor(model.Claude3Opus) != before {
		t.Errorf("observation on one counter changed another: %f != %f", b.Factor(model.Claude3Opus), before)
	}
	if a.Factor(model.Claude3Opus) == before {
		t.Error("observation did not change its own counter")
	}
}

func TestModelCounter_UnknownFamily(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	c := NewModelCounter(WithLogger(logger))

	got := c.CountText("llama-3-70b", "hello world")
	want := c.CountText(model.LeastEfficientTokenizer, "hello world")
	if got != want {
		t.Errorf("CountText(unknown) = %d, want %d", got, want)
	}
	c.CountText("llama-3-70b", "again")

	if n := strings.Count(buf.String(), "unknown model family"); n != 1 {
		t.Errorf("logged %d unknown-family warnings, want 1", n)
	}
}

func TestModelCounter_WithBias(t *testing.T) {
	c := NewModelCounter(WithCorrection(model.Claude3Opus, 1.0), WithBias(0))
	if got := c.CountText(model.Claude3Opus, "hello world"); got != 2 {
		t.Errorf("CountText() = %d, want 2", got)
	}
}

func TestModelCounter_ForFamily(t *testing.T) {
	c := NewModelCounter()
	fc := c.ForFamily(model.GPT4o)
	if fc.Count("hello world") != 2 {
		t.Errorf("ForFamily().Count() = %d, want 2", fc.Count("hello world"))
	}
	if !fc.FitsInLimit("hello world", 2) {
		t.Error("ForFamily().FitsInLimit() = false")
	}
}
