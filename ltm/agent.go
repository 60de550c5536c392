package ltm

import (
	"context"
	"fmt"
	"sync"

	"github.com/randalmurphal/ltmkit/conversation"
	"github.com/randalmurphal/ltmkit/memory"
	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/parser"
	"github.com/randalmurphal/ltmkit/prompt"
	"github.com/randalmurphal/ltmkit/provider"
	"github.com/randalmurphal/ltmkit/tokens"
)

// Agent answers user messages with a tool loop over long-term memory and
// saves every exchange back into memory.
//
// Turns are serialized; an Agent is safe to share but processes one Reply
// at a time.
type Agent struct {
	c       *caller
	store   memory.Store
	reader  *Reader
	deleter *DeletionPlanner
	parser  *parser.Parser

	mu         sync.Mutex
	history    *conversation.History
	vocabulary memory.Keywords
}

// NewAgent creates an agent over store.
func NewAgent(client provider.Client, store memory.Store, opts ...Option) *Agent {
	s := newSettings(opts)
	c := newCaller(client, s)
	return &Agent{
		c:       c,
		store:   store,
		reader:  newReader(c, store),
		deleter: newDeletionPlanner(c, store),
		parser:  parser.NewParser(),
		history: conversation.NewHistoryWithClock(s.now),
	}
}

// Reply runs one conversation turn:
//
//  1. the user message is timestamped and appended, after the history, to
//     the agent system prompt;
//  2. the inner tool loop runs until end_inner_loop;
//  3. the exchange is added to the history and saved to memory;
//  4. the history is trimmed to the prompt budget.
func (a *Agent) Reply(ctx context.Context, userText string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.c.s
	now := s.now()
	stamped := now.Format(timeLayout) + ": " + userText

	system, err := s.prompts.Render(prompt.AgentSystem, nil)
	if err != nil {
		return "", err
	}
	turn, err := s.prompts.Render(prompt.UserTurn, map[string]any{"user_message": stamped})
	if err != nil {
		return "", err
	}
	plan, err := s.prompts.Render(prompt.LoopPlan, nil)
	if err != nil {
		return "", err
	}
	act, err := s.prompts.Render(prompt.LoopAct, nil)
	if err != nil {
		return "", err
	}

	msgs := []provider.Message{provider.NewSystemMessage(system)}
	msgs = append(msgs, a.history.Messages()...)
	msgs = append(msgs, provider.NewUserMessage(turn))

	loop := &toolLoop{
		c:          a.c,
		task:       model.TaskConversation,
		handlers:   a.handlers(),
		planPrompt: plan,
		actPrompt:  act,
	}
	res, err := loop.run(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("reply: %w", err)
	}
	answer := res.Output

	answeredAt := s.now()
	user := provider.NewUserMessage(stamped)
	user.Timestamp = now
	assistant := provider.NewAssistantMessage(answeredAt.Format(timeLayout) + ": " + answer)
	assistant.Timestamp = answeredAt
	a.history.Append(user, assistant)

	exchange := fmt.Sprintf("%s(User): %s\n%s(Agent): %s",
		now.Format(timeLayout), userText, answeredAt.Format(timeLayout), answer)
	if _, err := a.savePassive(ctx, exchange); err != nil {
		return "", fmt.Errorf("save exchange: %w", err)
	}

	if s.maxPromptTokens > 0 {
		family := s.family(ctx, model.TaskConversation)
		trimmed, _ := a.c.trimmer.Fit(a.history.Messages(), tokens.NewTokenBudget(family, s.maxPromptTokens, 0))
		a.history.Replace(trimmed)
	}
	return answer, nil
}

func (a *Agent) handlers() Handlers {
	h := Handlers{
		ReadFromMemory: func(ctx context.Context, args ReadFromMemoryArgs) (string, error) {
			return a.reader.Loop(ctx, args.Query, a.vocabulary)
		},
		EndLoop: func(_ context.Context, args EndLoopArgs) (string, error) {
			return args.Message, nil
		},
	}
	if a.c.s.writeTools {
		h.SaveMemory = func(ctx context.Context, args SaveMemoryArgs) (string, error) {
			kws := memory.ParseKeywords(args.Keywords)
			if _, err := a.store.Add(ctx, args.Data, memory.Metadata{Timestamp: a.c.s.now(), Keywords: kws}); err != nil {
				return "", fmt.Errorf("save memory: %w", err)
			}
			a.vocabulary = a.vocabulary.Union(kws)
			return fmt.Sprintf("Saved memory %s.", args.Data), nil
		}
		h.DeleteMemory = func(ctx context.Context, args DeleteMemoryArgs) (string, error) {
			return a.deleter.Delete(ctx, args.Topic)
		}
	}
	return h
}

// SavePassive stores text in memory with keywords extracted by the model,
// and adds those keywords to the vocabulary offered to memory reads.
// Keyword output that does not parse saves the memory without keywords.
func (a *Agent) SavePassive(ctx context.Context, text string) (memory.ID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.savePassive(ctx, text)
}

func (a *Agent) savePassive(ctx context.Context, text string) (memory.ID, error) {
	s := a.c.s
	ask, err := s.prompts.Render(prompt.ExtractKeywords, map[string]any{"memory": text})
	if err != nil {
		return "", err
	}
	family := s.family(ctx, model.TaskKeywords)
	resp, err := a.c.complete(ctx, family, provider.Request{Messages: []provider.Message{provider.NewUserMessage(ask)}})
	if err != nil {
		return "", fmt.Errorf("extract keywords: %w", err)
	}

	kws := memory.NewKeywords(a.parser.Keywords(resp.Content)...)
	if len(kws) == 0 {
		s.logger.Warn("no keywords extracted", "response", resp.Content)
	}
	id, err := a.store.Add(ctx, text, memory.Metadata{Timestamp: s.now(), Keywords: kws})
	if err != nil {
		return "", err
	}
	a.vocabulary = a.vocabulary.Union(kws)
	s.logger.Debug("exchange saved", "id", id, "keywords", kws.String())
	return id, nil
}

// Vocabulary returns the keywords defined so far.
func (a *Agent) Vocabulary() memory.Keywords {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append(memory.Keywords(nil), a.vocabulary...)
}

// History returns a copy of the conversation history.
func (a *Agent) History() []provider.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.Messages()
}

// Cost returns the cumulative USD cost of every call made by the agent.
func (a *Agent) Cost() float64 {
	return a.c.s.tracker.Total()
}

// Reset clears the history, the keyword vocabulary and the cost tracker.
// Stored memories are kept.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history.Reset()
	a.vocabulary = nil
	a.c.s.tracker.Reset()
}
