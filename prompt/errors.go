package prompt

import "errors"

// Sentinel errors for rendering.
var (
	// ErrEmpty is returned when the template text is empty.
	ErrEmpty = errors.New("prompt template is empty")

	// ErrParse is returned when the template fails to parse.
	ErrParse = errors.New("prompt parse error")

	// ErrExecute is returned when template execution fails.
	ErrExecute = errors.New("prompt execution error")

	// ErrVariable is returned when a variable the template references is missing.
	ErrVariable = errors.New("prompt variable missing")

	// ErrUnknownPrompt is returned by Library.Render for a name with no template.
	ErrUnknownPrompt = errors.New("unknown prompt")
)
