package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoStructuredData indicates no candidate in the text decoded.
var ErrNoStructuredData = errors.New("no structured data in response")

// CodeBlock represents a fenced code block.
type CodeBlock struct {
	// Language is the language specifier after the opening fence (e.g., "json").
	Language string

	// Content is the text inside the block, excluding fences.
	Content string
}

// Parser extracts structured values from model output.
type Parser struct {
	codeBlockRegex *regexp.Regexp
}

// NewParser creates a new response parser with compiled regexes.
func NewParser() *Parser {
	return &Parser{
		codeBlockRegex: regexp.MustCompile("(?s)```(\\w*)[ \\t]*\\n(.*?)```"),
	}
}

// CodeBlocks returns all fenced code blocks in the text.
func (p *Parser) CodeBlocks(text string) []CodeBlock {
	matches := p.codeBlockRegex.FindAllStringSubmatch(text, -1)
	blocks := make([]CodeBlock, 0, len(matches))
	for _, match := range matches {
		blocks = append(blocks, CodeBlock{Language: strings.ToLower(match[1]), Content: match[2]})
	}
	return blocks
}

// candidates lists the substrings worth decoding, most specific first.
func (p *Parser) candidates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, b := range p.CodeBlocks(text) {
		switch b.Language {
		case "", "json", "yaml", "yml":
			add(b.Content)
		}
	}
	add(span(text, '[', ']'))
	add(span(text, '{', '}'))
	add(strings.Trim(strings.TrimSpace(text), "`"))
	return out
}

// span returns text from the first open to the last close, or "".
func span(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// Decode unmarshals the first candidate that decodes into v.
func (p *Parser) Decode(text string, v any) error {
	for _, c := range p.candidates(text) {
		if err := json.Unmarshal([]byte(c), v); err == nil {
			return nil
		}
		if err := yaml.Unmarshal([]byte(c), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrNoStructuredData, abbreviate(text, 80))
}

// Object returns the first JSON or YAML object in the text.
func (p *Parser) Object(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := p.Decode(text, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// List returns the first array in the text.
func (p *Parser) List(text string) ([]any, bool) {
	var list []any
	if err := p.Decode(text, &list); err != nil {
		return nil, false
	}
	return list, true
}

// Indices returns the distinct indices in [0, n) listed in the text, in the
// order given. Out-of-range, duplicate and non-integer entries are dropped.
// Unparsable text yields nil.
func (p *Parser) Indices(text string, n int) []int {
	list, ok := p.List(text)
	if !ok {
		return nil
	}

	var out []int
	seen := make(map[int]bool)
	for _, item := range list {
		idx, ok := toInt(item)
		if !ok || idx < 0 || idx >= n || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}

// Keywords returns the keyword strings listed in the text. Arrays are
// preferred; a single comma separated line is accepted as a fallback.
// Entries are trimmed and empty ones dropped.
func (p *Parser) Keywords(text string) []string {
	var raw []string
	if list, ok := p.List(text); ok {
		for _, item := range list {
			raw = append(raw, fmt.Sprint(item))
		}
	} else if line := strings.TrimSpace(text); line != "" && !strings.Contains(line, "\n") {
		raw = strings.Split(line, ",")
	}

	out := make([]string, 0, len(raw))
	for _, kw := range raw {
		kw = strings.Trim(strings.TrimSpace(kw), `"'`+"`")
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func abbreviate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Indices is a convenience function using a default parser.
func Indices(text string, n int) []int {
	return NewParser().Indices(text, n)
}

// Keywords is a convenience function using a default parser.
func Keywords(text string) []string {
	return NewParser().Keywords(text)
}
