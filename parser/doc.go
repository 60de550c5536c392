// Package parser recovers structured values from free-form model output.
//
// Models asked for JSON answer with fenced blocks, prose around a bare
// array, unquoted YAML-ish lists, or nothing usable at all. The parser tries
// each plausible candidate in turn (fenced blocks, the whole reply, the
// outermost bracketed span) with encoding/json first and gopkg.in/yaml.v3
// second, and reports ErrNoStructuredData only when every candidate fails.
//
//	p := parser.NewParser()
//	idx := p.Indices(reply, len(passages)) // [0 2 3], never errors
//	kws := p.Keywords(reply)                // ["travel", "family"]
//
// Indices and Keywords never fail: unusable output yields an empty result,
// which callers treat as "nothing selected".
package parser
