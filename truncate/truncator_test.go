package truncate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/tokens"
)

// runeCounter charges one token per rune, which makes limits exact.
type runeCounter struct{}

func (runeCounter) Count(text string) int { return utf8.RuneCountInString(text) }

func (runeCounter) FitsInLimit(text string, limit int) bool {
	return utf8.RuneCountInString(text) <= limit
}

func TestNew_Markers(t *testing.T) {
	tests := []struct {
		strategy Strategy
		marker   string
		name     string
	}{
		{FromEnd, DefaultEndMarker, "end"},
		{FromMiddle, DefaultMiddleMarker, "middle"},
		{FromStart, DefaultStartMarker, "start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.strategy)
			if tr.Strategy() != tt.strategy {
				t.Errorf("Strategy() = %v, want %v", tr.Strategy(), tt.strategy)
			}
			if tr.Marker() != tt.marker {
				t.Errorf("Marker() = %q, want %q", tr.Marker(), tt.marker)
			}
			if tr.Strategy().String() != tt.name {
				t.Errorf("String() = %q, want %q", tr.Strategy().String(), tt.name)
			}
		})
	}

	if got := New(FromEnd, WithMarker("[cut]")).Marker(); got != "[cut]" {
		t.Errorf("WithMarker: Marker() = %q", got)
	}
}

func TestTruncate_NoChangeWhenFitting(t *testing.T) {
	for _, s := range []Strategy{FromEnd, FromMiddle, FromStart} {
		tr := New(s, WithCounter(runeCounter{}))
		got, cut := tr.Truncate("short", 10)
		if cut || got != "short" {
			t.Errorf("%v: Truncate() = (%q, %v), want unchanged", s, got, cut)
		}
		got, cut = tr.Truncate("exact", 5)
		if cut || got != "exact" {
			t.Errorf("%v: exact fit was truncated: %q", s, got)
		}
	}
}

func TestTruncate_Strategies(t *testing.T) {
	text := "0123456789abcdefghij"

	tests := []struct {
		name     string
		strategy Strategy
		max      int
		want     string
	}{
		{"end keeps head", FromEnd, 8, "0123456|"},
		{"start keeps tail", FromStart, 8, "|defghij"},
		{"middle keeps both ends", FromMiddle, 9, "0123|ghij"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.strategy, WithCounter(runeCounter{}), WithMarker("|"))
			got, cut := tr.Truncate(text, tt.max)
			if !cut {
				t.Fatal("expected truncation")
			}
			if got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
			if n := (runeCounter{}).Count(got); n > tt.max {
				t.Errorf("result has %d tokens, limit %d", n, tt.max)
			}
		})
	}
}

func TestTruncate_MarkerLargerThanLimit(t *testing.T) {
	tr := New(FromEnd, WithCounter(runeCounter{}), WithMarker("[removed]"))
	got, cut := tr.Truncate(strings.Repeat("x", 50), 3)
	if !cut || got != "[removed]" {
		t.Errorf("Truncate() = (%q, %v), want marker only", got, cut)
	}
}

func TestTruncate_Unicode(t *testing.T) {
	tr := New(FromEnd, WithCounter(runeCounter{}), WithMarker("…"))
	got, _ := tr.Truncate("日本語のテキストです", 5)
	if !utf8.ValidString(got) {
		t.Fatalf("invalid UTF-8: %q", got)
	}
	if got != "日本語の…" {
		t.Errorf("Truncate() = %q", got)
	}
}

func TestTruncate_DefaultEstimatingCounter(t *testing.T) {
	tr := New(FromEnd)
	text := strings.Repeat("word ", 400) // ~500 tokens
	got, cut := tr.Truncate(text, 50)
	if !cut {
		t.Fatal("expected truncation")
	}
	if n := tokens.EstimateTokens(got); n > 51 {
		t.Errorf("estimated %d tokens, want about 50", n)
	}
	if !strings.HasSuffix(got, DefaultEndMarker) {
		t.Errorf("missing marker: %q", got[len(got)-10:])
	}
}

func TestTruncate_ModelCounter(t *testing.T) {
	counter := tokens.NewModelCounter().ForFamily(model.GPT4o)
	tr := New(FromMiddle, WithCounter(counter))

	text := strings.Repeat("memory passage ", 300)
	got, cut := tr.Truncate(text, 60)
	if !cut {
		t.Fatal("expected truncation")
	}
	if !strings.Contains(got, "[content truncated]") {
		t.Error("missing middle marker")
	}
	if n := counter.Count(got); n > 64 {
		t.Errorf("result has %d tokens, want about 60", n)
	}
}

func TestTruncateAll(t *testing.T) {
	tr := New(FromEnd, WithCounter(runeCounter{}), WithMarker("~"))
	in := []string{"short", "a much longer passage"}

	out := tr.TruncateAll(in, 6)

	if len(out) != 2 || out[0] != "short" || out[1] != "a muc~" {
		t.Errorf("TruncateAll() = %q", out)
	}
	if in[1] != "a much longer passage" {
		t.Error("input modified")
	}
}

func BenchmarkTruncate_FromMiddle(b *testing.B) {
	tr := New(FromMiddle)
	text := strings.Repeat("Hello World ", 1000)

	b.ResetTimer()
	for range b.N {
		tr.Truncate(text, 100)
	}
}
