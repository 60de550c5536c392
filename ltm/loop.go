package ltm

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/provider"
)

// toolLoop drives a model through tool calls until it calls a terminal
// tool. Each iteration optionally asks for a plan (tool choice none), then
// for the tool call itself (tool choice required).
//
// Malformed output (no tool call, unknown tool, bad arguments) discards
// the attempt and retries the iteration, at most retry.MaxAttempts times
// in a row. The loop runs at most retry.MaxIterations iterations. Both
// limits end in an error wrapping provider.ErrRetriesExhausted. Provider
// and handler errors other than malformed output end the loop at once, as
// does an exhausted nested loop reached through a handler.
type toolLoop struct {
	c        *caller
	task     model.Task
	handlers Handlers

	// planPrompt and actPrompt are appended as user messages before the
	// plan and act calls. An empty planPrompt skips the plan call.
	planPrompt string
	actPrompt  string

	// settle, if set, is called after every attempt with whether the
	// attempt was kept. Handlers that collect state use it to drop what a
	// discarded attempt produced.
	settle func(kept bool)
}

// loopResult is the terminal tool's output and the final transcript.
type loopResult struct {
	Output     string
	Transcript []provider.Message
	Iterations int
}

func (l *toolLoop) run(ctx context.Context, msgs []provider.Message) (loopResult, error) {
	s := l.c.s
	tools := l.handlers.Tools()
	state := model.NewRetryState(s.retry, s.family(ctx, l.task))
	msgs = append([]provider.Message(nil), msgs...)

	for iter := 1; iter <= state.Policy.MaxIterations; iter++ {
		for {
			attempt, output, done, err := l.iterate(ctx, state.CurrentModel, msgs, tools)
			if l.settle != nil {
				l.settle(err == nil)
			}
			if err == nil {
				state.Succeeded()
				msgs = attempt
				if done {
					return loopResult{Output: output, Transcript: msgs, Iterations: iter}, nil
				}
				break
			}
			if errors.Is(err, provider.ErrRetriesExhausted) || !errors.Is(err, provider.ErrMalformedOutput) {
				return loopResult{Transcript: msgs, Iterations: iter}, err
			}
			s.logger.Warn("malformed tool response",
				"task", l.task,
				"iteration", iter,
				"attempt", state.Attempt+1,
				"error", err,
			)
			if !state.RecordFailure(err) {
				return loopResult{Transcript: msgs, Iterations: iter}, fmt.Errorf("%s loop: %w", l.task, state.Err())
			}
		}
	}
	return loopResult{Transcript: msgs, Iterations: state.Policy.MaxIterations},
		fmt.Errorf("%s loop: %w: no terminal tool after %d iterations", l.task, provider.ErrRetriesExhausted, state.Policy.MaxIterations)
}

// iterate runs one plan/act exchange on a copy of msgs and returns the
// extended transcript.
func (l *toolLoop) iterate(ctx context.Context, family model.Family, msgs []provider.Message, tools []provider.Tool) ([]provider.Message, string, bool, error) {
	msgs = append([]provider.Message(nil), msgs...)

	if l.planPrompt != "" {
		msgs = append(msgs, provider.NewUserMessage(l.planPrompt))
		plan, err := l.c.complete(ctx, family, provider.Request{Messages: msgs, Tools: tools, ToolChoice: provider.ToolChoiceNone})
		if err != nil {
			return nil, "", false, err
		}
		msgs = append(msgs, provider.NewAssistantMessage(plan.Content))
		l.c.s.logger.Debug("plan", "task", l.task, "content", plan.Content)
	}
	if l.actPrompt != "" {
		msgs = append(msgs, provider.NewUserMessage(l.actPrompt))
	}

	resp, err := l.c.complete(ctx, family, provider.Request{Messages: msgs, Tools: tools, ToolChoice: provider.ToolChoiceRequired})
	if err != nil {
		return nil, "", false, err
	}
	if len(resp.ToolCalls) == 0 {
		return nil, "", false, malformed("%s: response has no tool call", l.task)
	}

	invocations := make([]Invocation, len(resp.ToolCalls))
	for i, call := range resp.ToolCalls {
		if invocations[i], err = ParseCall(call); err != nil {
			return nil, "", false, err
		}
	}

	msgs = append(msgs, resp.AssistantMessage())
	for i, inv := range invocations {
		out, err := l.handlers.Dispatch(ctx, inv)
		if err != nil {
			return nil, "", false, err
		}
		l.c.s.logger.Debug("tool called", "task", l.task, "tool", inv.Name)
		msgs = append(msgs, provider.NewToolMessage(resp.ToolCalls[i], l.c.clip(family, out)))
		if inv.Name.Terminal() {
			return msgs, out, true, nil
		}
	}
	return msgs, "", false, nil
}
