package prompt

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Name identifies a prompt in a Library.
type Name string

// Prompts used by the memory workflows.
const (
	// AgentSystem frames the outer/inner loop game for the agent.
	AgentSystem Name = "agent_system"
	// UserTurn wraps the incoming user message. Vars: user_message.
	UserTurn Name = "user_turn"
	// LoopPlan asks for a plan before each tool call of the agent loop.
	LoopPlan Name = "loop_plan"
	// LoopAct asks for the tool call that follows the plan.
	LoopAct Name = "loop_act"
	// ReadLoop opens a memory read loop. Vars: query, keywords.
	ReadLoop Name = "read_loop"
	// ReadPlan asks for the next step of a memory read loop.
	ReadPlan Name = "read_plan"
	// DeleteLoop opens the gather phase of a deletion. Vars: topic.
	DeleteLoop Name = "delete_loop"
	// DeleteSelect asks for the indices to delete. Vars: topic, memories.
	DeleteSelect Name = "delete_select"
	// ReconstructSystem instructs the state fold.
	ReconstructSystem Name = "reconstruct_system"
	// ReconstructState carries the current state. Vars: state.
	ReconstructState Name = "reconstruct_state"
	// ReconstructIntegrate carries one passage to fold in. Vars: memory.
	ReconstructIntegrate Name = "reconstruct_integrate"
	// ExtractKeywords asks for topic keywords of an exchange. Vars: memory.
	ExtractKeywords Name = "extract_keywords"
)

var defaults = map[Name]string{
	AgentSystem: `You are an assistant for a user. The conversation is played as a game with an outer loop and an inner loop.
In the outer loop the user sends you a message and you reply. The inner loop is how you build that reply.

The inner loop is turn based. Each turn you pick the tool you think is most useful, the tool returns a result,
and the next turn starts. The inner loop keeps going until you call the end_inner_loop tool with a message for the user.`,

	UserTurn: `*************************************************************************************
The user has sent you a message:
{{user_message}}

Address this message using your tools.
Everything above this point is for context only; it has already been answered.
Reply to this current message.`,

	LoopPlan: `Write a plan for the next step towards answering the user message above, using one of the tools available to you.`,

	LoopAct: `Call the tool that carries out the plan above.`,

	ReadLoop: `You are reading from a memory database to answer a query.

The query is: {{query}}.

Read from the database and consolidate what you find into a useful summary.
Keywords narrow the results down to those topics. Use at most 5 keywords.

After each read decide whether the memories are relevant. If none of them are, the topic is not in memory.

These keywords are defined and can narrow the search. Pick the relevant ones:
{{join keywords ", "}}`,

	ReadPlan: `Given the memories retrieved so far and the query, what is the next step?
Do not ask questions. Work with the memories and the query.`,

	DeleteLoop: `You need to delete memories about a topic from a database.

The topic is: {{topic}}.

Read from the database to find the memories that should be deleted, then call done.
Keywords narrow the results down to those topics. If a read returns nothing at all, memory is empty.

Each read returns memories from most recent to least recent.`,

	DeleteSelect: `{{numbered memories}}Above is a numbered list of memories. For each one decide whether it is strongly related to the topic:
{{topic}}

The memories that are related enough may be deleted. Answer with the numbers to delete as a JSON list of integers:

` + "```json\n[0, 2, 3, 6]\n```",

	ReconstructSystem: `You will be shown a series of memories one at a time, together with the current state.
Integrate each memory into the current state, updating or replacing fields as needed.
Write the state as a JSON object.`,

	ReconstructState: `The current state is:
{{state}}`,

	ReconstructIntegrate: `Create a new state by integrating the current state with this new information:
{{memory}}`,

	ExtractKeywords: `Create three general keywords describing the topic of this interaction:
{{memory}}
Answer with the keywords as a JSON list like: ["keyword_1", "keyword_2", "keyword_3"]`,
}

// Names returns every built-in prompt name, sorted.
func Names() []Name {
	return slices.Sorted(maps.Keys(defaults))
}

// Default returns the built-in text for name.
func Default(name Name) (string, bool) {
	text, ok := defaults[name]
	return text, ok
}

// Library renders named prompts. It starts from the built-in texts; callers
// may override individual prompts, e.g. from configuration.
// A Library is safe for concurrent use.
type Library struct {
	engine *Engine

	mu        sync.RWMutex
	overrides map[Name]string
}

// NewLibrary creates a library with the built-in prompts and the given
// overrides applied.
func NewLibrary(overrides map[Name]string) *Library {
	l := &Library{engine: NewEngine(), overrides: make(map[Name]string)}
	for name, text := range overrides {
		l.overrides[name] = text
	}
	return l
}

// Override replaces the text of name. An empty text restores the default.
func (l *Library) Override(name Name, text string) error {
	if text != "" {
		if _, err := l.engine.Variables(text); err != nil {
			return fmt.Errorf("override %s: %w", name, err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if text == "" {
		delete(l.overrides, name)
		return nil
	}
	l.overrides[name] = text
	return nil
}

// Text returns the current template text for name.
func (l *Library) Text(name Name) (string, bool) {
	l.mu.RLock()
	text, ok := l.overrides[name]
	l.mu.RUnlock()
	if ok {
		return text, true
	}
	return Default(name)
}

// Render renders name with vars. Every variable the template references
// must be present in vars.
func (l *Library) Render(name Name, vars map[string]any) (string, error) {
	text, ok := l.Text(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}

	required, err := l.engine.Variables(text)
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", name, err)
	}
	if err := RequireVariables(required, vars); err != nil {
		return "", fmt.Errorf("prompt %s: %w", name, err)
	}

	out, err := l.engine.Render(text, vars)
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", name, err)
	}
	return out, nil
}
