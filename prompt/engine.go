package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Engine renders mustache-style prompt text through text/template.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates an engine with the built-in helpers.
func NewEngine() *Engine {
	return &Engine{funcs: builtinFuncs()}
}

// Render executes text with vars. Missing variables render as "<no value>";
// use Library.Render when every referenced variable must be present.
func (e *Engine) Render(text string, vars map[string]any) (string, error) {
	tmpl, err := e.compile(text)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecute, err)
	}
	return buf.String(), nil
}

// Variables validates text and returns the variable names it references,
// in order of first appearance.
func (e *Engine) Variables(text string) ([]string, error) {
	if _, err := e.compile(text); err != nil {
		return nil, err
	}
	return referencedVariables(text), nil
}

// AddFunc registers a helper. Helpers registered this way take Go template
// arguments (.name), not bare names.
func (e *Engine) AddFunc(name string, fn any) {
	e.funcs[name] = fn
}

func (e *Engine) compile(text string) (*template.Template, error) {
	if text == "" {
		return nil, ErrEmpty
	}
	tmpl, err := template.New("prompt").Funcs(e.funcs).Parse(toGoTemplate(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return tmpl, nil
}

// RequireVariables returns an error wrapping ErrVariable naming the first
// entry of required that vars does not provide.
func RequireVariables(required []string, vars map[string]any) error {
	for _, name := range required {
		if _, ok := vars[name]; !ok {
			return fmt.Errorf("%w: %s", ErrVariable, name)
		}
	}
	return nil
}
