package model

import (
	"context"
	"maps"
)

// selectorKey is the context key for the model selector.
type selectorKey struct{}

// Task names a kind of model call made by the memory workflows.
type Task string

// Tasks issued by ltmkit.
const (
	// TaskConversation answers the user inside the agent's inner loop.
	TaskConversation Task = "conversation"
	// TaskKeywords extracts topic keywords for a saved exchange.
	TaskKeywords Task = "keywords"
	// TaskReconstruct folds memories into a consolidated state.
	TaskReconstruct Task = "reconstruct"
	// TaskMemoryLoop drives the read and deletion tool loops.
	TaskMemoryLoop Task = "memory_loop"
	// TaskSelectDeletion picks which gathered memories to delete.
	TaskSelectDeletion Task = "select_deletion"
)

// TierFunc maps a task to its tier.
type TierFunc func(task Task) Tier

// DefaultTierFunc sends keyword extraction to the fast tier and everything
// else to the default tier.
func DefaultTierFunc(task Task) Tier {
	if task == TaskKeywords {
		return TierFast
	}
	return TierDefault
}

// Selector provides task-based model selection with override support.
type Selector struct {
	overrides  map[Task]Family
	globalOver Family
	tierFunc   TierFunc

	defaultModel  Family
	thinkingModel Family
	fastModel     Family
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// NewSelector creates a new model selector with the given options.
// Defaults: gpt-4o for default and thinking tiers, gpt-3.5-turbo for fast.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{
		overrides:     make(map[Task]Family),
		defaultModel:  GPT4o,
		thinkingModel: GPT4o,
		fastModel:     GPT35Turbo,
		tierFunc:      DefaultTierFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithDefaultModel sets the default model for most tasks.
func WithDefaultModel(f Family) SelectorOption {
	return func(s *Selector) {
		s.defaultModel = f
	}
}

// WithThinkingModel sets the model for complex reasoning tasks.
func WithThinkingModel(f Family) SelectorOption {
	return func(s *Selector) {
		s.thinkingModel = f
	}
}

// WithFastModel sets the model for simple, high-volume tasks.
func WithFastModel(f Family) SelectorOption {
	return func(s *Selector) {
		s.fastModel = f
	}
}

// WithTaskOverride sets a model override for a specific task.
func WithTaskOverride(task Task, f Family) SelectorOption {
	return func(s *Selector) {
		s.overrides[task] = f
	}
}

// WithGlobalOverride sets a model that overrides all selections.
func WithGlobalOverride(f Family) SelectorOption {
	return func(s *Selector) {
		s.globalOver = f
	}
}

// WithTierFunc sets the function to determine a task's tier.
func WithTierFunc(fn TierFunc) SelectorOption {
	return func(s *Selector) {
		s.tierFunc = fn
	}
}

// Select returns the model for the given task.
// Priority order: global override > task override > tier model.
func (s *Selector) Select(task Task) Family {
	if s.globalOver != "" {
		return s.globalOver
	}
	if f, ok := s.overrides[task]; ok {
		return f
	}
	return s.SelectForTier(s.tierFunc(task))
}

// SelectForTier returns the model for a specific tier.
func (s *Selector) SelectForTier(tier Tier) Family {
	if s.globalOver != "" {
		return s.globalOver
	}

	switch tier {
	case TierThinking:
		return s.thinkingModel
	case TierFast:
		return s.fastModel
	default:
		return s.defaultModel
	}
}

// Clone returns a copy of the selector with the same configuration.
func (s *Selector) Clone() *Selector {
	c := *s
	c.overrides = maps.Clone(s.overrides)
	return &c
}

// WithGlobal returns a new selector with a global override applied.
func (s *Selector) WithGlobal(f Family) *Selector {
	clone := s.Clone()
	clone.globalOver = f
	return clone
}

// NewContext returns a new context with the selector attached.
func NewContext(ctx context.Context, selector *Selector) context.Context {
	return context.WithValue(ctx, selectorKey{}, selector)
}

// FromContext retrieves the selector attached by NewContext.
func FromContext(ctx context.Context) (*Selector, bool) {
	s, ok := ctx.Value(selectorKey{}).(*Selector)
	return s, ok && s != nil
}
