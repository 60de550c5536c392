package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// helperNames are the helpers whose bare-name arguments are rewritten.
var helperNames = map[string]struct{}{
	"join": {}, "json": {}, "upper": {}, "lower": {}, "trim": {},
	"default": {}, "indent": {}, "numbered": {},
}

func builtinFuncs() template.FuncMap {
	return template.FuncMap{
		"join":     join,
		"json":     toJSON,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"trim":     strings.TrimSpace,
		"default":  defaultValue,
		"indent":   indent,
		"numbered": numbered,
	}
}

// join accepts []string or any slice of Stringers and values.
func join(items any, sep string) string {
	switch v := items.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, sep)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, sep)
	default:
		return fmt.Sprint(v)
	}
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// defaultValue returns fallback when val is nil or the empty string.
func defaultValue(val, fallback any) any {
	if val == nil {
		return fallback
	}
	if s, ok := val.(string); ok && s == "" {
		return fallback
	}
	return val
}

func indent(s string, spaces int) string {
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// numbered renders items as "<idx> <item>" blocks separated by blank lines,
// indices starting at zero.
func numbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d %s\n\n", i, item)
	}
	return b.String()
}
