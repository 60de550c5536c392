// Package config loads ltmkit settings from YAML, TOML or JSON files and
// from LTMKIT_ environment variables, and turns them into ltm options.
//
// Precedence, lowest first: Default, the config file, the environment.
//
//	cfg, err := config.Load("ltmkit.yaml")
//	if err != nil {
//	    return err
//	}
//	opts, err := cfg.Options()
//	if err != nil {
//	    return err
//	}
//	agent := ltm.NewAgent(client, store, opts...)
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/randalmurphal/ltmkit/ltm"
	"github.com/randalmurphal/ltmkit/memory"
	"github.com/randalmurphal/ltmkit/memory/boltstore"
	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/prompt"
	"github.com/randalmurphal/ltmkit/trace"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds everything needed to build the memory workflows.
type Config struct {
	// --- Model Selection ---

	// Models maps tasks to model families.
	Models Models `json:"models" yaml:"models" toml:"models"`

	// Pricing overrides list prices per family, USD per million tokens.
	Pricing map[model.Family]model.Pricing `json:"pricing,omitempty" yaml:"pricing,omitempty" toml:"pricing,omitempty" validate:"dive"`

	// Temperature applies to every request. Nil means provider default.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`

	// --- Loops ---

	Retry model.RetryPolicy `json:"retry" yaml:"retry" toml:"retry"`

	// WriteTools offers save_memory and delete_memory to the agent.
	WriteTools bool `json:"write_tools" yaml:"write_tools" toml:"write_tools"`

	// --- Memory ---

	Ranker memory.Ranker `json:"ranker" yaml:"ranker" toml:"ranker"`

	// RetrieveK is how many raw records a read asks the store for.
	RetrieveK int `json:"retrieve_k" yaml:"retrieve_k" toml:"retrieve_k" validate:"gte=1"`

	// FoldOrder is "oldest_first" or "newest_first".
	FoldOrder string `json:"fold_order" yaml:"fold_order" toml:"fold_order" validate:"omitempty,oneof=oldest_first newest_first"`

	// StorePath is the bolt database file. Empty means an in-memory store.
	StorePath string `json:"store_path,omitempty" yaml:"store_path,omitempty" toml:"store_path,omitempty"`

	// --- Budgets ---

	// MaxPromptTokens is the request and history budget. 0 disables trimming.
	MaxPromptTokens int `json:"max_prompt_tokens" yaml:"max_prompt_tokens" toml:"max_prompt_tokens" validate:"gte=0"`

	// MaxMessageTokens caps tool results and passages. 0 disables clipping.
	MaxMessageTokens int `json:"max_message_tokens" yaml:"max_message_tokens" toml:"max_message_tokens" validate:"gte=0"`

	// --- Debugging ---

	// TraceDir receives one file per completion call. Empty disables tracing.
	TraceDir string `json:"trace_dir,omitempty" yaml:"trace_dir,omitempty" toml:"trace_dir,omitempty"`

	// Prompts overrides built-in prompt texts by name.
	Prompts map[prompt.Name]string `json:"prompts,omitempty" yaml:"prompts,omitempty" toml:"prompts,omitempty"`
}

// Models configures the model selector. Empty fields keep the selector
// defaults.
type Models struct {
	Default  model.Family `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
	Thinking model.Family `json:"thinking,omitempty" yaml:"thinking,omitempty" toml:"thinking,omitempty"`
	Fast     model.Family `json:"fast,omitempty" yaml:"fast,omitempty" toml:"fast,omitempty"`

	// Tasks pins individual tasks to a family.
	Tasks map[model.Task]model.Family `json:"tasks,omitempty" yaml:"tasks,omitempty" toml:"tasks,omitempty" validate:"dive,required"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Retry:            model.DefaultRetry,
		Ranker:           memory.NewRanker(),
		RetrieveK:        ltm.DefaultRetrieveK,
		FoldOrder:        ltm.FoldOldestFirst.String(),
		MaxPromptTokens:  ltm.DefaultMaxPromptTokens,
		MaxMessageTokens: ltm.DefaultMaxMessageTokens,
	}
}

var validate = validator.New()

// Validate checks field ranges, the fold order and prompt overrides.
func (c *Config) Validate() error {
	var problems []string
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, e := range verrs {
			problems = append(problems, fmt.Sprintf("%s fails %q (value %v)", e.Namespace(), e.Tag(), e.Value()))
		}
	}

	lib := prompt.NewLibrary(nil)
	for name, text := range c.Prompts {
		if _, ok := prompt.Default(name); !ok {
			problems = append(problems, fmt.Sprintf("prompts.%s: %v", name, prompt.ErrUnknownPrompt))
			continue
		}
		if err := lib.Override(name, text); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Selector builds the model selector.
func (c *Config) Selector() *model.Selector {
	var opts []model.SelectorOption
	if c.Models.Default != "" {
		opts = append(opts, model.WithDefaultModel(c.Models.Default))
	}
	if c.Models.Thinking != "" {
		opts = append(opts, model.WithThinkingModel(c.Models.Thinking))
	}
	if c.Models.Fast != "" {
		opts = append(opts, model.WithFastModel(c.Models.Fast))
	}
	for task, family := range c.Models.Tasks {
		opts = append(opts, model.WithTaskOverride(task, family))
	}
	return model.NewSelector(opts...)
}

// Apply installs the pricing overrides into tracker.
func (c *Config) Apply(tracker *model.CostTracker) {
	for family, p := range c.Pricing {
		tracker.SetPricing(family, p)
	}
}

// CostTracker returns a tracker with the list prices and the overrides.
func (c *Config) CostTracker(opts ...model.CostOption) *model.CostTracker {
	t := model.NewCostTracker(opts...)
	c.Apply(t)
	return t
}

// Options returns the ltm options described by c. It creates the trace
// directory when one is configured.
func (c *Config) Options() ([]ltm.Option, error) {
	order, ok := ltm.ParseFoldOrder(c.FoldOrder)
	if !ok {
		return nil, fmt.Errorf("%w: fold_order %q", ErrInvalid, c.FoldOrder)
	}

	opts := []ltm.Option{
		ltm.WithSelector(c.Selector()),
		ltm.WithCostTracker(c.CostTracker()),
		ltm.WithPrompts(prompt.NewLibrary(c.Prompts)),
		ltm.WithRanker(c.Ranker),
		ltm.WithRetry(c.Retry),
		ltm.WithFoldOrder(order),
		ltm.WithRetrieveK(c.RetrieveK),
		ltm.WithMaxPromptTokens(c.MaxPromptTokens),
		ltm.WithMaxMessageTokens(c.MaxMessageTokens),
	}
	if c.Temperature != nil {
		opts = append(opts, ltm.WithTemperature(*c.Temperature))
	}
	if c.WriteTools {
		opts = append(opts, ltm.WithWriteTools())
	}
	if c.TraceDir != "" {
		w, err := trace.New(c.TraceDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ltm.WithTracer(w))
	}
	return opts, nil
}

// OpenStore opens the bolt store at StorePath, or an in-memory store when
// no path is set.
func (c *Config) OpenStore() (memory.Store, error) {
	if c.StorePath == "" {
		return memory.NewInMemoryStore(), nil
	}
	s, err := boltstore.Open(c.StorePath)
	if err != nil {
		return nil, err
	}
	return s, nil
}
