// Package workflow is the claim verification engine. It fingerprints a
// normalized input, serves repeated claims from the result cache, and
// otherwise runs the analysis graph (collect, synthesize, aggregate, assemble,
// and an optional localize step), storing the result for later requests.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/report"
)

// Options tunes one Analyze call.
type Options struct {
	// ForceRefresh recomputes the result and replaces any stored entry.
	ForceRefresh bool
	// Extraction is the OCR outcome that produced an image_text input.
	// It is recorded in the audit trail.
	Extraction *providers.Outcome
}

// Engine runs analyses. It is safe for concurrent use.
type Engine struct {
	rt     *Runtime
	logger *slog.Logger
}

// New creates an Engine from rt.
func New(rt *Runtime) *Engine {
	return &Engine{
		rt:     rt,
		logger: rt.Logger.With("system", "workflow"),
	}
}

// Budget is the longest a computation may take: the collection deadline
// plus the synthesis timeout.
func (e *Engine) Budget() time.Duration {
	return e.rt.Collector.Deadline() + e.rt.Synthesizer.Timeout()
}

// Analyze returns the result for in and how the cache served it. Only
// malformed input is an error; every provider, synthesis, or cache failure
// yields a degraded result instead. Cancelling ctx abandons the wait but not
// the computation, which still completes and is stored.
func (e *Engine) Analyze(ctx context.Context, in claims.Input, opts Options) (*report.Result, cache.Status, error) {
	if err := validate(in); err != nil {
		e.logger.Warn("analysis rejected", "state", StageFailed, "error", err)
		return nil, "", err
	}

	fp := claims.FingerprintOf(in)
	logger := e.logger.With("fingerprint", fp.Short(), "kind", in.Kind, "domain", in.Domain)
	logger.Debug("analysis received", "state", StageReceived, "refresh", opts.ForceRefresh)
	logger.Debug("checking cache", "state", StageCacheCheck)

	result, status, err := e.rt.Cache.Do(ctx, fp.String(), opts.ForceRefresh, func(ctx context.Context, st cache.Status) (report.Result, error) {
		return e.compute(ctx, fp, in, opts, st, logger)
	})
	if err != nil {
		return nil, "", fmt.Errorf("analyze %s: %w", fp.Short(), err)
	}

	logger.Info("analysis served",
		"state", StageCached,
		"cache", status,
		"label", result.Verdict.Label,
		"confidence", result.Verdict.Confidence,
		"degraded", result.Audit.Degraded,
	)

	return &result, status, nil
}

func (e *Engine) compute(
	ctx context.Context,
	fp claims.Fingerprint,
	in claims.Input,
	opts Options,
	st cache.Status,
	logger *slog.Logger,
) (report.Result, error) {
	graph, err := e.buildGraph()
	if err != nil {
		return report.Result{}, fmt.Errorf("build graph: %w", err)
	}

	started := time.Now()
	initial := seed(run{
		Fingerprint: fp,
		Input:       in,
		Options:     opts,
		Cache:       st,
		Started:     started,
		Deadline:    started.Add(e.Budget()),
		Logger:      logger,
	})

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return report.Result{}, fmt.Errorf("execute graph: %w", err)
	}

	return resultOf(final)
}

func validate(in claims.Input) error {
	switch in.Kind {
	case claims.KindText, claims.KindURL, claims.KindImageText:
	default:
		return fmt.Errorf("%w: unknown kind %q", claims.ErrInputRejected, in.Kind)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is empty", claims.ErrInputRejected)
	}
	return nil
}

var _ Translator = (*providers.Translator)(nil)
