// Package evidence fans a normalized input out to the applicable providers
// concurrently and joins whatever completes before the collection deadline.
package evidence

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/providers"
)

// Source pairs an adapter with its per-call timeout.
type Source struct {
	Adapter providers.Adapter
	Timeout time.Duration
}

// Collection is the joined result of one fan-out. Outcomes holds one entry per
// configured source, in source order.
type Collection struct {
	Evidence []providers.EvidenceItem
	Outcomes []providers.Outcome
}

// Toxicity returns the toxicity score, if the scorer was available.
func (c Collection) Toxicity() *float64 {
	for _, o := range c.Outcomes {
		if o.Available() && o.Signal.Score != nil {
			return o.Signal.Score
		}
	}
	return nil
}

// Threat returns the URL screening verdict, if the screen was available.
func (c Collection) Threat() *providers.Threat {
	for _, o := range c.Outcomes {
		if o.Available() && o.Signal.Threat != nil {
			return o.Signal.Threat
		}
	}
	return nil
}

// Collector runs sources concurrently under a global deadline.
type Collector struct {
	sources  []Source
	deadline time.Duration
	logger   *slog.Logger
}

// New creates a Collector. The deadline is raised to the longest source
// timeout when shorter, so a slow source is never cut before its own timeout.
func New(sources []Source, deadline time.Duration, logger *slog.Logger) *Collector {
	for _, s := range sources {
		deadline = max(deadline, s.Timeout)
	}
	return &Collector{
		sources:  sources,
		deadline: deadline,
		logger:   logger.With("system", "evidence"),
	}
}

// Deadline returns the effective collection deadline.
func (c *Collector) Deadline() time.Duration {
	return c.deadline
}

// Collect invokes every applicable source concurrently and returns once all
// have reported or the deadline fires. Sources that have not reported by then
// are recorded as Unavailable(Timeout); their late results are discarded.
func (c *Collector) Collect(ctx context.Context, in claims.Input) Collection {
	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()

	type report struct {
		index   int
		outcome providers.Outcome
	}

	outcomes := make([]providers.Outcome, len(c.sources))
	reported := make([]bool, len(c.sources))
	reports := make(chan report, len(c.sources))
	pending := 0

	for i, s := range c.sources {
		if !s.Adapter.Applies(in) {
			outcomes[i] = providers.NotApplicable(s.Adapter.Name())
			reported[i] = true
			continue
		}
		pending++
		go func() {
			reports <- report{index: i, outcome: providers.Invoke(ctx, s.Adapter, in, s.Timeout, c.logger)}
		}()
	}

	start := time.Now()
wait:
	for pending > 0 {
		select {
		case r := <-reports:
			outcomes[r.index] = r.outcome
			reported[r.index] = true
			pending--
		case <-ctx.Done():
			break wait
		}
	}

	for i, s := range c.sources {
		if !reported[i] {
			out := providers.NewUnavailable(s.Adapter.Name(), providers.ReasonTimeout, ctx.Err())
			out.Latency = time.Since(start)
			outcomes[i] = out
			c.logger.Warn("provider abandoned at deadline", "provider", s.Adapter.Name(), "deadline", c.deadline)
		}
	}

	return Collection{
		Evidence: merge(outcomes),
		Outcomes: outcomes,
	}
}

// merge orders evidence by category, then by source order, then by the order
// each provider returned it, so arrival order never affects the result.
func merge(outcomes []providers.Outcome) []providers.EvidenceItem {
	type ranked struct {
		item   providers.EvidenceItem
		source int
		pos    int
	}

	var all []ranked
	for i, o := range outcomes {
		if !o.Available() {
			continue
		}
		for j, item := range o.Signal.Evidence {
			all = append(all, ranked{item: item, source: i, pos: j})
		}
	}

	slices.SortFunc(all, func(a, b ranked) int {
		return cmp.Or(
			cmp.Compare(a.item.Category.Rank(), b.item.Category.Rank()),
			cmp.Compare(a.source, b.source),
			cmp.Compare(a.pos, b.pos),
		)
	})

	items := make([]providers.EvidenceItem, len(all))
	for i, r := range all {
		items[i] = r.item
	}
	return items
}
