package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/crediscope/internal/claims"
)

// Invoke runs adapter a against in, bounded by timeout.
// It never blocks past the timeout, even when the adapter ignores its context,
// and never returns an error: failures become Unavailable outcomes.
func Invoke(ctx context.Context, a Adapter, in claims.Input, timeout time.Duration, logger *slog.Logger) Outcome {
	if !a.Applies(in) {
		return NotApplicable(a.Name())
	}
	return call(ctx, a.Name(), timeout, logger, func(ctx context.Context) (Signal, error) {
		return a.Call(ctx, in)
	})
}

func call(
	ctx context.Context,
	name Name,
	timeout time.Duration,
	logger *slog.Logger,
	fn func(context.Context) (Signal, error),
) Outcome {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		sig Signal
		err error
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", ErrTransport, v)}
			}
		}()
		sig, err := fn(ctx)
		done <- result{sig: sig, err: err}
	}()

	var out Outcome
	select {
	case r := <-done:
		if r.err != nil {
			out = NewUnavailable(name, Classify(ctx, r.err), r.err)
		} else {
			out = NewAvailable(name, r.sig)
		}
	case <-ctx.Done():
		out = NewUnavailable(name, ReasonTimeout, ctx.Err())
	}

	out.Latency = time.Since(start)
	observe(out)

	if out.Available() {
		logger.Debug("provider call complete", "provider", name, "latency", out.Latency)
	} else {
		logger.Warn("provider unavailable", "provider", name, "reason", out.Reason, "latency", out.Latency, "error", out.Err)
	}

	return out
}

type limited struct {
	Adapter
	limiter *rate.Limiter
}

// Limit decorates a with a call quota. Calls beyond the quota are reported
// as QuotaExceeded without reaching the provider. A nil limiter returns a.
func Limit(a Adapter, limiter *rate.Limiter) Adapter {
	if limiter == nil {
		return a
	}
	return &limited{Adapter: a, limiter: limiter}
}

func (l *limited) Call(ctx context.Context, in claims.Input) (Signal, error) {
	if !l.limiter.Allow() {
		return Signal{}, ErrQuotaExceeded
	}
	return l.Adapter.Call(ctx, in)
}
