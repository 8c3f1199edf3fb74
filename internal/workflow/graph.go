package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/report"
	"github.com/JaimeStill/crediscope/internal/scoring"
)

// buildGraph wires the computation stages:
// collect → synthesize → aggregate → assemble → localize? → finalize.
func (e *Engine) buildGraph() (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("crediscope-analyze")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{NodeCollect, e.collectNode()},
		{NodeSynthesize, e.synthesizeNode()},
		{NodeAggregate, e.aggregateNode()},
		{NodeAssemble, e.assembleNode()},
		{NodeLocalize, e.localizeNode()},
		{NodeFinalize, e.finalizeNode()},
	}

	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	if err := graph.AddEdge(NodeCollect, NodeSynthesize, nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge(NodeSynthesize, NodeAggregate, nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge(NodeAggregate, NodeAssemble, nil); err != nil {
		return nil, err
	}

	// assemble → localize (non-English input with a translator configured)
	if err := graph.AddEdge(NodeAssemble, NodeLocalize, e.needsLocalize); err != nil {
		return nil, err
	}

	// assemble → finalize (nothing to translate)
	if err := graph.AddEdge(NodeAssemble, NodeFinalize, state.Not(e.needsLocalize)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge(NodeLocalize, NodeFinalize, nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint(NodeCollect); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(NodeFinalize); err != nil {
		return nil, err
	}

	return graph, nil
}

func (e *Engine) needsLocalize(s state.State) bool {
	if e.rt.Translator == nil {
		return false
	}

	in, err := inputOf(s)
	if err != nil {
		return false
	}

	return !in.English()
}

func loggerOf(s state.State) *slog.Logger {
	if l, err := lookup[*slog.Logger](s, KeyLogger); err == nil && l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

func (e *Engine) collectNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		in, err := inputOf(s)
		if err != nil {
			return s, fmt.Errorf("collect: %w", err)
		}

		loggerOf(s).Debug("collecting evidence", "state", StageCollectingEvidence, "deadline", e.rt.Collector.Deadline())
		col := e.rt.Collector.Collect(ctx, in)

		return s.Set(KeyCollection, col), nil
	})
}

func (e *Engine) synthesizeNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		in, err := inputOf(s)
		if err != nil {
			return s, fmt.Errorf("synthesize: %w", err)
		}

		col, err := collectionOf(s)
		if err != nil {
			return s, fmt.Errorf("synthesize: %w", err)
		}

		loggerOf(s).Debug("synthesizing", "state", StageSynthesizing, "evidence", len(col.Evidence))
		syn := e.rt.Synthesizer.Synthesize(ctx, in, col)

		return s.Set(KeySynthesis, syn), nil
	})
}

func (e *Engine) aggregateNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		col, err := collectionOf(s)
		if err != nil {
			return s, fmt.Errorf("aggregate: %w", err)
		}

		syn, err := synthesisOf(s)
		if err != nil {
			return s, fmt.Errorf("aggregate: %w", err)
		}

		loggerOf(s).Debug("aggregating", "state", StageAggregating, "synthesis", syn.Status)
		verdict := scoring.Aggregate(e.rt.Policy, scoring.Inputs{Collection: col, Synthesis: syn})

		return s.Set(KeyVerdict, verdict), nil
	})
}

func (e *Engine) assembleNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		in, err := inputOf(s)
		if err != nil {
			return s, fmt.Errorf("assemble: %w", err)
		}

		fp, err := lookup[claims.Fingerprint](s, KeyFingerprint)
		if err != nil {
			return s, fmt.Errorf("assemble: %w", err)
		}

		opts, err := lookup[Options](s, KeyOptions)
		if err != nil {
			return s, fmt.Errorf("assemble: %w", err)
		}

		st, err := lookup[cache.Status](s, KeyCacheStatus)
		if err != nil {
			return s, fmt.Errorf("assemble: %w", err)
		}

		started, err := lookup[time.Time](s, KeyStarted)
		if err != nil {
			return s, fmt.Errorf("assemble: %w", err)
		}

		col, err := collectionOf(s)
		if err != nil {
			return s, fmt.Errorf("assemble: %w", err)
		}

		syn, err := synthesisOf(s)
		if err != nil {
			return s, fmt.Errorf("assemble: %w", err)
		}

		verdict, err := verdictOf(s)
		if err != nil {
			return s, fmt.Errorf("assemble: %w", err)
		}

		auxiliary := []providers.Outcome{providers.NotApplicable(providers.OpticalExtraction)}
		if opts.Extraction != nil {
			auxiliary[0] = *opts.Extraction
		}

		result := report.Assemble(report.Parts{
			Fingerprint: fp,
			Input:       in,
			Outcomes:    col.Outcomes,
			Evidence:    col.Evidence,
			Synthesis:   syn,
			Verdict:     verdict,
			Auxiliary:   auxiliary,
			Cache:       string(st),
			Started:     started,
			Finished:    time.Now(),
		})

		skipped := providers.NotApplicable(providers.Translation)
		result.Audit.Providers[skipped.Provider] = report.ProviderStatus{Status: skipped.Status, Reason: skipped.Reason}

		loggerOf(s).Debug("analysis assembled", "state", StageAssembled, "label", verdict.Label, "basis", verdict.Basis)
		return s.Set(KeyResult, result), nil
	})
}

// localizeNode translates the summary within what remains of the
// computation budget. Failure leaves Localized nil.
func (e *Engine) localizeNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		in, err := inputOf(s)
		if err != nil {
			return s, fmt.Errorf("localize: %w", err)
		}

		result, err := resultOf(s)
		if err != nil {
			return s, fmt.Errorf("localize: %w", err)
		}

		deadline, err := lookup[time.Time](s, KeyDeadline)
		if err != nil {
			return s, fmt.Errorf("localize: %w", err)
		}

		budget, cancel := context.WithDeadline(ctx, deadline)
		defer cancel()

		loggerOf(s).Debug("localizing", "state", StageLocalizing, "language", in.Language)
		out := e.rt.Translator.Translate(budget, result.Verdict.Summary, in.Language)
		result.Audit.Providers[out.Provider] = report.ProviderStatus{
			Status:    out.Status,
			Reason:    out.Reason,
			LatencyMs: out.Latency.Milliseconds(),
		}

		if out.Available() && out.Signal.Text != "" {
			result.Localized = &report.Localized{Language: in.Language, Summary: out.Signal.Text}
		}

		return s.Set(KeyResult, result), nil
	})
}

func (e *Engine) finalizeNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		result, err := resultOf(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		started, err := lookup[time.Time](s, KeyStarted)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		analysesTotal.WithLabelValues(string(result.Verdict.Label), strconv.FormatBool(result.Audit.Degraded)).Inc()
		analysisDuration.Observe(time.Since(started).Seconds())

		return s, nil
	})
}
