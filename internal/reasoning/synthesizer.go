package reasoning

import (
	"context"
	"log/slog"
	"time"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/evidence"
	"github.com/JaimeStill/crediscope/internal/prompts"
	"github.com/JaimeStill/crediscope/internal/providers"
)

// Synthesizer produces one Synthesis per analysis under its own timeout.
type Synthesizer struct {
	completer Completer
	prompts   prompts.Source
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a Synthesizer. A nil completer yields a Synthesizer whose every
// attempt is unavailable.
func New(completer Completer, ps prompts.Source, timeout time.Duration, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		completer: completer,
		prompts:   ps,
		timeout:   timeout,
		logger:    logger.With("system", "reasoning"),
	}
}

// Timeout returns the synthesis time bound.
func (s *Synthesizer) Timeout() time.Duration {
	return s.timeout
}

// Synthesize asks the model to interpret col for in. It never returns an
// error: failures are reported through the Synthesis status.
func (s *Synthesizer) Synthesize(ctx context.Context, in claims.Input, col evidence.Collection) Synthesis {
	start := time.Now()
	out := s.synthesize(ctx, in, col)
	out.Latency = time.Since(start)

	synthesisTotal.WithLabelValues(string(out.Status)).Inc()
	synthesisLatency.Observe(out.Latency.Seconds())

	return out
}

func (s *Synthesizer) synthesize(ctx context.Context, in claims.Input, col evidence.Collection) Synthesis {
	if s.completer == nil {
		s.logger.Debug("synthesis skipped", "error", ErrNotConfigured)
		return Unavailable(providers.ReasonTransportError)
	}

	system, err := ComposePrompt(ctx, s.prompts, prompts.StageSynthesize)
	if err != nil {
		s.logger.Error("compose prompt failed", "error", err)
		return Unavailable(providers.ReasonTransportError)
	}

	user, err := Brief(in, col)
	if err != nil {
		s.logger.Error("compose brief failed", "error", err)
		return Unavailable(providers.ReasonTransportError)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}

	done := make(chan reply, 1)
	go func() {
		text, err := s.completer.Complete(ctx, system, user)
		done <- reply{text, err}
	}()

	var r reply
	select {
	case r = <-done:
	case <-ctx.Done():
		s.logger.Warn("synthesis timed out", "timeout", s.timeout)
		return Unavailable(providers.ReasonTimeout)
	}

	if r.err != nil {
		reason := providers.Classify(ctx, r.err)
		s.logger.Warn("synthesis unavailable", "reason", reason, "error", r.err)
		return Unavailable(reason)
	}

	out := Parse(r.text)
	if out.Status == StatusUnparseable {
		s.logger.Warn("synthesis reply unparseable", "length", len(r.text))
	}
	return out
}
