package ltm

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/ltmkit/conversation"
	"github.com/randalmurphal/ltmkit/model"
	"github.com/randalmurphal/ltmkit/provider"
	"github.com/randalmurphal/ltmkit/tokens"
	"github.com/randalmurphal/ltmkit/truncate"
)

// caller wraps a provider.Client with the bookkeeping every completion
// needs: request trimming, cost and correction updates, tracing.
type caller struct {
	client  provider.Client
	s       *settings
	trimmer *conversation.Trimmer
}

func newCaller(client provider.Client, s *settings) *caller {
	return &caller{client: client, s: s, trimmer: s.trimmer()}
}

// complete sends req to family. Provider errors are returned wrapped and
// are never retried here. A missed deadline also wraps provider.ErrTimeout.
func (c *caller) complete(ctx context.Context, family model.Family, req provider.Request) (*provider.Response, error) {
	req.Model = string(family)
	if req.Temperature == nil {
		req.Temperature = c.s.temperature
	}
	if c.s.maxPromptTokens > 0 {
		budget := tokens.NewTokenBudget(family, c.s.maxPromptTokens, req.MaxTokens)
		req.Messages, _ = c.trimmer.Fit(req.Messages, budget)
	}

	resp, err := c.client.Complete(ctx, req)
	if c.s.tracer != nil {
		if _, terr := c.s.tracer.Write(req, resp); terr != nil {
			c.s.logger.Warn("trace write failed", "error", terr)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("complete with %s: %w: %w", family, provider.ErrTimeout, err)
	}
	if err != nil {
		return nil, fmt.Errorf("complete with %s: %w", family, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("complete with %s: %w", family, provider.ErrEmptyResponse)
	}

	if resp.Usage != nil {
		cost := c.s.tracker.Record(family, *resp.Usage)
		c.s.counter.RecordUsage(family, req.Messages, resp.Usage)
		c.s.logger.Debug("completion",
			"family", family,
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
			"cost_usd", cost,
		)
	}
	return resp, nil
}

// clip shortens text to the per-message token cap for family.
func (c *caller) clip(family model.Family, text string) string {
	if c.s.maxMessageTokens <= 0 {
		return text
	}
	t := truncate.New(truncate.FromMiddle, truncate.WithCounter(c.s.counter.ForFamily(family)))
	out, clipped := t.Truncate(text, c.s.maxMessageTokens)
	if clipped {
		c.s.logger.Debug("message clipped", "family", family, "max_tokens", c.s.maxMessageTokens)
	}
	return out
}
