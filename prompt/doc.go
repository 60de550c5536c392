// Package prompt renders the prompts sent by the memory workflows.
//
// Templates use a small mustache-style syntax that is rewritten to
// text/template before execution:
//
//	Hello, {{name}}!
//	{{#if urgent}}URGENT: {{/if}}{{title}}
//	{{#each items}}{{.}} {{/each}}
//	{{join keywords ", "}}
//
// Built-in helpers: join, json, upper, lower, trim, default, indent and
// numbered ("<idx> <item>" blocks, as used for deletion selection).
//
// Library holds the named prompts (AgentSystem, ReadLoop, DeleteSelect, ...)
// and lets configuration override any of them:
//
//	lib := prompt.NewLibrary(nil)
//	text, err := lib.Render(prompt.DeleteLoop, map[string]any{"topic": "holidays"})
package prompt
