package workflow

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/evidence"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/reasoning"
	"github.com/JaimeStill/crediscope/internal/report"
	"github.com/JaimeStill/crediscope/internal/scoring"
)

// Translator renders text into a target language. *providers.Translator
// satisfies it.
type Translator interface {
	Translate(ctx context.Context, text, target string) providers.Outcome
}

// Runtime bundles the dependencies the engine requires. It is constructed by
// higher-level composition code from Infrastructure and configuration.
type Runtime struct {
	Collector   *evidence.Collector
	Synthesizer *reasoning.Synthesizer
	Translator  Translator
	Cache       *cache.Cache[report.Result]
	Policy      scoring.Policy
	Logger      *slog.Logger
}
