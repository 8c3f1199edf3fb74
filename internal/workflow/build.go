package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/config"
	"github.com/JaimeStill/crediscope/internal/evidence"
	"github.com/JaimeStill/crediscope/internal/prompts"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/reasoning"
	"github.com/JaimeStill/crediscope/internal/report"
)

// Services are the engine and the intake collaborators that feed it.
// Extractor is nil when optical extraction is not configured.
type Services struct {
	Engine     *Engine
	Normalizer *claims.Normalizer
	Extractor  *providers.Extractor
}

// Build constructs the engine from configuration. Providers without
// credentials are replaced by stand-ins that report them unavailable.
func Build(
	ctx context.Context,
	cfg *config.Config,
	store cache.Store,
	ps prompts.Source,
	client *http.Client,
	logger *slog.Logger,
) (*Services, error) {
	sources, err := collectorSources(ctx, cfg, client)
	if err != nil {
		return nil, err
	}

	var completer reasoning.Completer
	if cfg.Reasoning.Enabled() {
		completer = reasoning.NewOpenAI(&cfg.Reasoning, client)
	} else {
		logger.Warn("reasoning not configured, synthesis will be unavailable")
	}

	rt := &Runtime{
		Collector:   evidence.New(sources, cfg.Engine.CollectionDeadlineDuration(), logger),
		Synthesizer: reasoning.New(completer, ps, cfg.Reasoning.TimeoutDuration(), logger),
		Cache:       cache.New[report.Result](store, logger),
		Policy:      cfg.Engine.Policy,
		Logger:      logger,
	}

	if p := cfg.Providers.Translation; p.Enabled() {
		t, err := providers.NewTranslator(ctx, p, logger)
		if err != nil {
			return nil, err
		}
		rt.Translator = t
	}

	svc := &Services{Engine: New(rt)}

	if p := cfg.Providers.OpticalExtraction; p.Enabled() {
		svc.Extractor, err = providers.NewExtractor(ctx, p, logger)
		if err != nil {
			return nil, err
		}
	}

	var resolver claims.PageResolver
	if cfg.Engine.ResolvePages {
		resolver = claims.NewPageTitleResolver(client, "crediscope/"+cfg.Version)
	}
	svc.Normalizer = claims.NewNormalizer(resolver, cfg.Engine.ResolveTimeoutDuration(), logger)

	return svc, nil
}

func collectorSources(ctx context.Context, cfg *config.Config, client *http.Client) ([]evidence.Source, error) {
	pc := cfg.Providers

	factCheck := providers.Disabled(providers.FactCheckLookup, nil)
	if pc.FactCheck.Enabled() {
		fc, err := providers.NewFactCheck(ctx, pc.FactCheck, cfg.Engine.MaxEvidence)
		if err != nil {
			return nil, fmt.Errorf("fact check: %w", err)
		}
		factCheck = fc
	}

	toxicity := providers.Disabled(providers.ToxicityScoring, providers.AppliesToLanguage)
	if pc.Toxicity.Enabled() {
		toxicity = providers.NewToxicity(pc.Toxicity, client)
	}

	urlSafety := providers.Disabled(providers.URLSafety, providers.AppliesToURLs)
	if pc.URLSafety.Enabled() {
		us, err := providers.NewURLScreen(ctx, pc.URLSafety, cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("url safety: %w", err)
		}
		urlSafety = us
	}

	return []evidence.Source{
		{Adapter: providers.Limit(factCheck, pc.FactCheck.Limiter()), Timeout: pc.FactCheck.TimeoutDuration()},
		{Adapter: providers.Limit(toxicity, pc.Toxicity.Limiter()), Timeout: pc.Toxicity.TimeoutDuration()},
		{Adapter: providers.Limit(urlSafety, pc.URLSafety.Limiter()), Timeout: pc.URLSafety.TimeoutDuration()},
	}, nil
}
