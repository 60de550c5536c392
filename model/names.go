package model

import "strings"

// Family is a normalized model family identifier. It is the key for pricing,
// context windows and tokenizer selection.
type Family string

// OpenAI families. These have exact client-side tokenizers.
const (
	GPT4o       Family = "gpt-4o"
	GPT4oMini   Family = "gpt-4o-mini"
	GPT4Turbo   Family = "gpt-4-turbo"
	GPT4Preview Family = "gpt-4-1106-preview"
	GPT4        Family = "gpt-4"
	GPT35Turbo  Family = "gpt-3.5-turbo"
	O1          Family = "o1"
	O1Mini      Family = "o1-mini"
	O3Mini      Family = "o3-mini"
)

// Anthropic families. Token counts are estimated and corrected.
const (
	Claude3Opus    Family = "claude-3-opus-20240229"
	Claude3Sonnet  Family = "claude-3-sonnet-20240229"
	Claude3Haiku   Family = "claude-3-haiku-20240307"
	Claude35Sonnet Family = "claude-3-5-sonnet-20240620"
)

// Google families. Token counts are estimated and corrected.
const (
	Gemini15Pro   Family = "gemini-1.5-pro"
	Gemini15Flash Family = "gemini-1.5-flash"
)

// LeastEfficientTokenizer is the family used for counting when the family is
// unknown. Its tokenizer yields the highest counts of all known families.
const LeastEfficientTokenizer = Claude3Opus

// Vendor groups families by who serves them.
type Vendor int

// Vendor constants.
const (
	VendorUnknown Vendor = iota
	VendorOpenAI
	VendorAnthropic
	VendorGoogle
)

// String returns the vendor name.
func (v Vendor) String() string {
	switch v {
	case VendorOpenAI:
		return "openai"
	case VendorAnthropic:
		return "anthropic"
	case VendorGoogle:
		return "google"
	default:
		return "unknown"
	}
}

// aliases maps short names to the dated identifiers providers expect.
var aliases = map[string]Family{
	"gpt-4-1106":        GPT4Preview,
	"claude-3-haiku":    Claude3Haiku,
	"claude-3-sonnet":   Claude3Sonnet,
	"claude-3-opus":     Claude3Opus,
	"claude-3-5-sonnet": Claude35Sonnet,
}

// contextWindows holds the maximum input tokens per family.
var contextWindows = map[Family]int{
	GPT4o:          128000,
	GPT4oMini:      128000,
	GPT4Turbo:      128000,
	GPT4Preview:    128000,
	GPT4:           8192,
	GPT35Turbo:     16385,
	O1:             200000,
	O1Mini:         128000,
	O3Mini:         200000,
	Claude3Opus:    200000,
	Claude3Sonnet:  200000,
	Claude3Haiku:   200000,
	Claude35Sonnet: 200000,
	Gemini15Pro:    2097152,
	Gemini15Flash:  1048576,
}

// Resolve converts a provider model identifier to its Family, applying the
// alias map. Identifiers that are not aliases are returned as-is, lower-cased
// and trimmed; they may still be unknown (see Known).
func Resolve(name string) Family {
	key := strings.ToLower(strings.TrimSpace(name))
	if f, ok := aliases[key]; ok {
		return f
	}
	return Family(key)
}

// Known reports whether the family has pricing and a context window.
func Known(f Family) bool {
	_, ok := contextWindows[f]
	return ok
}

// ContextWindow returns the maximum input tokens for the family, or 0 if the
// family is unknown.
func ContextWindow(f Family) int {
	return contextWindows[f]
}

// VendorOf returns the vendor serving the family. Unknown identifiers are
// classified by prefix so that new dated releases still route correctly.
func VendorOf(f Family) Vendor {
	s := string(f)
	switch {
	case strings.HasPrefix(s, "gpt-"), isOSeries(s):
		return VendorOpenAI
	case strings.HasPrefix(s, "claude"):
		return VendorAnthropic
	case strings.HasPrefix(s, "gemini"):
		return VendorGoogle
	default:
		return VendorUnknown
	}
}

// isOSeries matches OpenAI reasoning models ("o1", "o1-mini", "o3-mini", ...).
func isOSeries(s string) bool {
	return len(s) >= 2 && s[0] == 'o' && s[1] >= '0' && s[1] <= '9'
}

// Tier represents a model capability tier.
type Tier int

// Tier constants representing model capability levels.
const (
	TierFast Tier = iota
	TierDefault
	TierThinking
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierDefault:
		return "default"
	case TierThinking:
		return "thinking"
	default:
		return "unknown"
	}
}

// TierFor returns the tier for a given family.
func TierFor(f Family) Tier {
	switch f {
	case Claude3Opus, GPT4, O1:
		return TierThinking
	case GPT35Turbo, GPT4oMini, Claude3Haiku, Gemini15Flash, O1Mini, O3Mini:
		return TierFast
	default:
		return TierDefault
	}
}
