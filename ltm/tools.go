package ltm

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"

	"github.com/randalmurphal/ltmkit/provider"
)

// ToolName is the closed set of operations exposed to the model.
type ToolName string

// Tools offered by the memory workflows.
const (
	ToolReadMemory     ToolName = "read_memory"
	ToolReadFromMemory ToolName = "read_from_memory"
	ToolSaveMemory     ToolName = "save_memory"
	ToolDeleteMemory   ToolName = "delete_memory"
	ToolEndLoop        ToolName = "end_inner_loop"
	ToolDone           ToolName = "done"
)

// Valid reports whether n is one of the defined tools.
func (n ToolName) Valid() bool {
	switch n {
	case ToolReadMemory, ToolReadFromMemory, ToolSaveMemory, ToolDeleteMemory, ToolEndLoop, ToolDone:
		return true
	}
	return false
}

// Terminal reports whether calling n ends the loop that offered it.
func (n ToolName) Terminal() bool {
	return n == ToolEndLoop || n == ToolDone
}

// ReadMemoryArgs are the arguments of read_memory.
type ReadMemoryArgs struct {
	Query    string `json:"query" jsonschema:"required" jsonschema_description:"The semantic query used to retrieve the memories."`
	Keywords string `json:"keywords" jsonschema:"required" jsonschema_description:"Comma separated keywords to filter memories. Empty for no filtering."`
}

// ReadFromMemoryArgs are the arguments of read_from_memory.
type ReadFromMemoryArgs struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"The semantic query used to retrieve the memories."`
}

// SaveMemoryArgs are the arguments of save_memory.
type SaveMemoryArgs struct {
	Data     string `json:"data" jsonschema:"required" jsonschema_description:"The information to save into memory."`
	Keywords string `json:"keywords" jsonschema:"required" jsonschema_description:"Comma separated keywords that classify the memory."`
}

// DeleteMemoryArgs are the arguments of delete_memory.
type DeleteMemoryArgs struct {
	Topic string `json:"topic" jsonschema:"required" jsonschema_description:"The topic whose memories should be removed."`
}

// EndLoopArgs are the arguments of end_inner_loop.
type EndLoopArgs struct {
	Message string `json:"message" jsonschema:"required" jsonschema_description:"The message to send to the user."`
}

// DoneArgs are the arguments of done.
type DoneArgs struct {
	Results string `json:"results" jsonschema:"required" jsonschema_description:"What the memory reads found, to return to the caller."`
}

// Invocation is one parsed tool call. Args holds the typed arguments:
// ReadMemoryArgs for read_memory, DoneArgs for done, and so on.
type Invocation struct {
	ID   string
	Name ToolName
	Args any
}

type toolSpec struct {
	description string
	args        any
}

var specs = map[ToolName]toolSpec{
	ToolReadMemory:     {"Retrieve memories from long-term memory based on a query.", ReadMemoryArgs{}},
	ToolReadFromMemory: {"Retrieve memories from long-term memory based on a query.", ReadFromMemoryArgs{}},
	ToolSaveMemory:     {"Save a memory into long-term memory. Save information from the current user message.", SaveMemoryArgs{}},
	ToolDeleteMemory:   {"Remove memories related to a topic from long-term memory.", DeleteMemoryArgs{}},
	ToolEndLoop:        {"Send a message to the user and end the inner loop.", EndLoopArgs{}},
	ToolDone:           {"Finish reading memory and return the results.", DoneArgs{}},
}

var definitions = sync.OnceValue(func() map[ToolName]provider.Tool {
	r := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	out := make(map[ToolName]provider.Tool, len(specs))
	for name, spec := range specs {
		schema := r.ReflectFromType(reflect.TypeOf(spec.args))
		schema.Version = ""
		params, err := json.Marshal(schema)
		if err != nil {
			panic(fmt.Sprintf("tool %s schema: %v", name, err))
		}
		out[name] = provider.Tool{Name: string(name), Description: spec.description, Parameters: params}
	}
	return out
})

// Definition returns the provider tool definition for name.
func Definition(name ToolName) (provider.Tool, bool) {
	tool, ok := definitions()[name]
	return tool, ok
}

// ParseCall validates a model tool call and decodes its arguments.
//
// Arguments must be a JSON object, or a JSON string holding one (some
// providers double encode). Every schema-required field must be present;
// numbers and booleans are accepted where strings are expected. Failures
// wrap provider.ErrMalformedOutput.
func ParseCall(call provider.ToolCall) (Invocation, error) {
	name := ToolName(call.Name)
	if !name.Valid() {
		return Invocation{}, malformed("unknown tool %q", call.Name)
	}

	args, err := argumentObject(call.Arguments)
	if err != nil {
		return Invocation{}, fmt.Errorf("tool %s: %w", name, err)
	}

	inv := Invocation{ID: call.ID, Name: name}
	field := func(key string) (string, error) {
		v := args.Get(key)
		if !v.Exists() {
			return "", malformed("tool %s: missing argument %q", name, key)
		}
		return v.String(), nil
	}

	switch name {
	case ToolReadMemory:
		var a ReadMemoryArgs
		if a.Query, err = field("query"); err != nil {
			return inv, err
		}
		// keywords are optional in practice; models often drop empty ones
		a.Keywords = args.Get("keywords").String()
		inv.Args = a
	case ToolReadFromMemory:
		var a ReadFromMemoryArgs
		if a.Query, err = field("query"); err != nil {
			return inv, err
		}
		inv.Args = a
	case ToolSaveMemory:
		var a SaveMemoryArgs
		if a.Data, err = field("data"); err != nil {
			return inv, err
		}
		a.Keywords = args.Get("keywords").String()
		inv.Args = a
	case ToolDeleteMemory:
		var a DeleteMemoryArgs
		if a.Topic, err = field("topic"); err != nil {
			return inv, err
		}
		inv.Args = a
	case ToolEndLoop:
		var a EndLoopArgs
		if a.Message, err = field("message"); err != nil {
			return inv, err
		}
		inv.Args = a
	case ToolDone:
		var a DoneArgs
		if a.Results, err = field("results"); err != nil {
			return inv, err
		}
		inv.Args = a
	}
	return inv, nil
}

func argumentObject(raw json.RawMessage) (gjson.Result, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		text = "{}"
	}
	if !gjson.Valid(text) {
		return gjson.Result{}, malformed("arguments are not valid JSON")
	}
	res := gjson.Parse(text)
	if res.Type == gjson.String && gjson.Valid(res.Str) {
		res = gjson.Parse(res.Str)
	}
	if !res.IsObject() {
		return gjson.Result{}, malformed("arguments are not a JSON object")
	}
	return res, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", provider.ErrMalformedOutput, fmt.Sprintf(format, args...))
}

// Handlers is the handler table of one workflow. Only tools with a non-nil
// handler are offered to the model; calling any other tool is malformed
// output.
type Handlers struct {
	ReadMemory     func(ctx context.Context, args ReadMemoryArgs) (string, error)
	ReadFromMemory func(ctx context.Context, args ReadFromMemoryArgs) (string, error)
	SaveMemory     func(ctx context.Context, args SaveMemoryArgs) (string, error)
	DeleteMemory   func(ctx context.Context, args DeleteMemoryArgs) (string, error)
	EndLoop        func(ctx context.Context, args EndLoopArgs) (string, error)
	Done           func(ctx context.Context, args DoneArgs) (string, error)
}

// Tools returns the definitions of the offered tools in a fixed order.
func (h Handlers) Tools() []provider.Tool {
	var out []provider.Tool
	for _, name := range []ToolName{ToolReadMemory, ToolReadFromMemory, ToolSaveMemory, ToolDeleteMemory, ToolEndLoop, ToolDone} {
		if h.offers(name) {
			tool, _ := Definition(name)
			out = append(out, tool)
		}
	}
	return out
}

func (h Handlers) offers(name ToolName) bool {
	switch name {
	case ToolReadMemory:
		return h.ReadMemory != nil
	case ToolReadFromMemory:
		return h.ReadFromMemory != nil
	case ToolSaveMemory:
		return h.SaveMemory != nil
	case ToolDeleteMemory:
		return h.DeleteMemory != nil
	case ToolEndLoop:
		return h.EndLoop != nil
	case ToolDone:
		return h.Done != nil
	}
	return false
}

// Dispatch runs the handler for inv. Handler errors are returned as is;
// a tool this table does not offer is malformed output.
func (h Handlers) Dispatch(ctx context.Context, inv Invocation) (string, error) {
	if !h.offers(inv.Name) {
		return "", malformed("tool %s is not available here", inv.Name)
	}
	switch args := inv.Args.(type) {
	case ReadMemoryArgs:
		return h.ReadMemory(ctx, args)
	case ReadFromMemoryArgs:
		return h.ReadFromMemory(ctx, args)
	case SaveMemoryArgs:
		return h.SaveMemory(ctx, args)
	case DeleteMemoryArgs:
		return h.DeleteMemory(ctx, args)
	case EndLoopArgs:
		return h.EndLoop(ctx, args)
	case DoneArgs:
		return h.Done(ctx, args)
	default:
		return "", malformed("tool %s has arguments of type %T", inv.Name, inv.Args)
	}
}
