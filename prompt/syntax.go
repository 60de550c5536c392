package prompt

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	ifOpen     = regexp.MustCompile(`\{\{#if\s+(\w+)\}\}`)
	eachOpen   = regexp.MustCompile(`\{\{#each\s+(\w+)\}\}`)
	bareName   = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\}\}`)
	helperCall = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\s+([^{}]+)\}\}`)
	blockName  = regexp.MustCompile(`\{\{#(?:if|each)\s+([a-zA-Z_]\w*)\}\}`)

	closers = strings.NewReplacer("{{/if}}", "{{end}}", "{{/each}}", "{{end}}")
)

// keywords of text/template that must survive as written.
var reserved = map[string]bool{
	"else": true, "end": true, "if": true, "range": true,
	"with": true, "define": true, "template": true, "block": true,
}

// toGoTemplate rewrites mustache-style tags into text/template actions:
//
//	{{name}}               -> {{.name}}
//	{{#if x}}..{{/if}}     -> {{if .x}}..{{end}}
//	{{#each xs}}..{{/each}} -> {{range .xs}}..{{end}}
//	{{join xs ", "}}       -> {{join .xs ", "}}
//
// Actions already written in Go syntax ({{.name}}, {{.}}) pass through.
func toGoTemplate(text string) string {
	out := ifOpen.ReplaceAllString(text, "{{if .$1}}")
	out = eachOpen.ReplaceAllString(out, "{{range .$1}}")
	out = closers.Replace(out)

	out = bareName.ReplaceAllStringFunc(out, func(tag string) string {
		name := tag[2 : len(tag)-2]
		if reserved[name] {
			return tag
		}
		return "{{." + name + "}}"
	})

	return helperCall.ReplaceAllStringFunc(out, func(tag string) string {
		m := helperCall.FindStringSubmatch(tag)
		if _, ok := helperNames[m[1]]; !ok {
			return tag
		}
		args := splitArgs(m[2])
		for i, arg := range args {
			if isName(arg) {
				args[i] = "." + arg
			}
		}
		return "{{" + m[1] + " " + strings.Join(args, " ") + "}}"
	})
}

// splitArgs splits on spaces outside single or double quotes.
func splitArgs(s string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			cur.WriteRune(r)
		case quote != 0 && r == quote:
			quote = 0
			cur.WriteRune(r)
		case quote == 0 && r == ' ':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}

// isName reports whether arg is a bare variable name rather than a literal
// or an expression already in Go syntax.
func isName(arg string) bool {
	if arg == "" || arg == "true" || arg == "false" {
		return false
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return false
	}
	for i, r := range arg {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// referencedVariables lists variable names used by bare tags, block openers
// and helper arguments, deduplicated in order of first use.
func referencedVariables(text string) []string {
	var names []string
	add := func(name string) {
		if !reserved[name] && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	for _, m := range bareName.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range blockName.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range helperCall.FindAllStringSubmatch(text, -1) {
		if _, ok := helperNames[m[1]]; !ok {
			continue
		}
		for _, arg := range splitArgs(m[2]) {
			if isName(arg) {
				add(arg)
			}
		}
	}
	return names
}
