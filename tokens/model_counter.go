package tokens

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/provider"
)

// MessageOverhead is the per-message token cost of role and formatting
// markers that text tokenization does not see.
const MessageOverhead = 4

// ScriptLineOverhead is the per-line token cost added when counting a script.
const ScriptLineOverhead = 4

// anthropicInitialFactor is where Anthropic corrections start. The cl100k
// estimate undercounts Claude by roughly this much.
const anthropicInitialFactor = 1.1

// Payload is the material to count. Any combination of fields may be set;
// their counts are summed.
type Payload struct {
	Messages []provider.Message
	Script   []string
	Text     string
}

// ModelCounter counts tokens per model family. OpenAI families are counted
// exactly with their BPE encoding. Other families are estimated with
// cl100k_base and scaled by a per-family Correction that converges on the
// provider's billed counts through Observe.
//
// A ModelCounter is safe for concurrent use.
type ModelCounter struct {
	mu          sync.Mutex
	corrections map[model.Family]*Correction
	counters    map[tokenizer.Encoding]Counter
	warned      map[model.Family]bool
	bias        float64
	logger      *slog.Logger
}

// Option configures a ModelCounter.
type Option func(*ModelCounter)

// WithBias sets the overestimation added to every correction factor.
func WithBias(bias float64) Option {
	return func(c *ModelCounter) {
		c.bias = bias
	}
}

// WithLogger sets the logger used for precision warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *ModelCounter) {
		c.logger = logger
	}
}

// WithCorrection seeds the correction factor for a family.
func WithCorrection(family model.Family, factor float64) Option {
	return func(c *ModelCounter) {
		c.corrections[family] = NewCorrection(factor, c.bias)
	}
}

// NewModelCounter creates a counter with default bias and no observations.
func NewModelCounter(opts ...Option) *ModelCounter {
	c := &ModelCounter{
		corrections: make(map[model.Family]*Correction),
		counters:    make(map[tokenizer.Encoding]Counter),
		warned:      make(map[model.Family]bool),
		bias:        DefaultBias,
		logger:      slog.Default().With("component", "tokens"),
	}
	for _, opt := range opts {
		opt(c)
	}
	// Options may seed corrections before WithBias runs.
	for _, corr := range c.corrections {
		corr.bias = c.bias
	}
	return c
}

// Count returns the token count of the payload for the family.
// It never fails: unknown families are counted with the least efficient
// known tokenizer and a one-time warning is logged.
func (c *ModelCounter) Count(family model.Family, p Payload) int {
	family, exact := c.route(family)
	raw := c.raw(family, p)
	if exact {
		return raw
	}
	return c.correction(family).Apply(raw)
}

// CountMessages counts a message list, including per-message overhead.
func (c *ModelCounter) CountMessages(family model.Family, msgs []provider.Message) int {
	return c.Count(family, Payload{Messages: msgs})
}

// CountText counts free text.
func (c *ModelCounter) CountText(family model.Family, text string) int {
	return c.Count(family, Payload{Text: text})
}

// Raw returns the uncorrected count of the payload. For exact families this
// equals Count.
func (c *ModelCounter) Raw(family model.Family, p Payload) int {
	family, _ = c.route(family)
	return c.raw(family, p)
}

// Observe updates the family's correction with a provider-reported prompt
// token count for a payload whose raw estimate was raw. Exact families are
// not corrected.
func (c *ModelCounter) Observe(family model.Family, raw, observed int) {
	family, exact := c.route(family)
	if exact {
		return
	}
	before := c.correction(family).Factor()
	after := c.correction(family).Observe(raw, observed)
	c.logger.Debug("token correction updated",
		"family", family,
		"raw", raw,
		"observed", observed,
		"before", before,
		"after", after,
	)
}

// RecordUsage updates the correction from a completed call. A nil usage is
// ignored.
func (c *ModelCounter) RecordUsage(family model.Family, msgs []provider.Message, usage *provider.TokenUsage) {
	if usage == nil || usage.PromptTokens <= 0 {
		return
	}
	c.Observe(family, c.Raw(family, Payload{Messages: msgs}), usage.PromptTokens)
}

// Factor returns the current correction factor for the family. Exact
// families always report 1.
func (c *ModelCounter) Factor(family model.Family) float64 {
	family, exact := c.route(family)
	if exact {
		return 1
	}
	return c.correction(family).Factor()
}

// ForFamily returns a Counter that counts text the way Count does for the
// family.
func (c *ModelCounter) ForFamily(family model.Family) Counter {
	return familyCounter{mc: c, family: family}
}

type familyCounter struct {
	mc     *ModelCounter
	family model.Family
}

func (f familyCounter) Count(text string) int {
	return f.mc.CountText(f.family, text)
}

func (f familyCounter) FitsInLimit(text string, limit int) bool {
	return f.Count(text) <= limit
}

// route resolves aliases and maps unknown families to the least efficient
// tokenizer. exact reports whether the family has a client-side tokenizer.
func (c *ModelCounter) route(family model.Family) (model.Family, bool) {
	family = model.Resolve(string(family))
	switch model.VendorOf(family) {
	case model.VendorOpenAI:
		return family, true
	case model.VendorAnthropic, model.VendorGoogle:
		return family, false
	}

	c.mu.Lock()
	first := !c.warned[family]
	c.warned[family] = true
	c.mu.Unlock()
	if first {
		c.logger.Warn("unknown model family, token counts are approximate",
			"family", family,
			"fallback", model.LeastEfficientTokenizer,
		)
	}
	return model.LeastEfficientTokenizer, false
}

// encodingFor picks the BPE encoding for a routed family.
func encodingFor(family model.Family) tokenizer.Encoding {
	s := string(family)
	if strings.HasPrefix(s, "gpt-4o") || strings.HasPrefix(s, "gpt-4.1") ||
		strings.HasPrefix(s, "gpt-5") || (len(s) > 1 && s[0] == 'o' && s[1] >= '0' && s[1] <= '9') {
		return EncodingO200k
	}
	return EncodingCl100k
}

func (c *ModelCounter) counter(enc tokenizer.Encoding) Counter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tc, ok := c.counters[enc]; ok {
		return tc
	}
	var tc Counter
	tk, err := NewTiktokenCounter(enc)
	if err != nil {
		c.logger.Warn("tokenizer unavailable, using character estimate", "encoding", enc, "error", err)
		tc = NewEstimatingCounter()
	} else {
		tc = tk
	}
	c.counters[enc] = tc
	return tc
}

func (c *ModelCounter) correction(family model.Family) *Correction {
	c.mu.Lock()
	defer c.mu.Unlock()

	corr, ok := c.corrections[family]
	if !ok {
		initial := 1.0
		if model.VendorOf(family) == model.VendorAnthropic {
			initial = anthropicInitialFactor
		}
		corr = NewCorrection(initial, c.bias)
		c.corrections[family] = corr
	}
	return corr
}

func (c *ModelCounter) raw(family model.Family, p Payload) int {
	tc := c.counter(encodingFor(family))

	total := 0
	for _, m := range p.Messages {
		total += MessageOverhead + tc.Count(m.Content)
		if m.Name != "" {
			total += tc.Count(m.Name)
		}
		for _, call := range m.ToolCalls {
			total += tc.Count(call.Name) + tc.Count(string(call.Arguments))
		}
	}
	for _, line := range p.Script {
		total += ScriptLineOverhead + tc.Count(line)
	}
	total += tc.Count(p.Text)
	return total
}
