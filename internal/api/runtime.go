package api

import (
	"github.com/JaimeStill/crediscope/internal/config"
	"github.com/JaimeStill/crediscope/internal/infrastructure"
	"github.com/JaimeStill/crediscope/internal/prompts"
	"github.com/JaimeStill/crediscope/internal/workflow"
	"github.com/JaimeStill/crediscope/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// assembled verification engine.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination    pagination.Config
	MaxUploadSize int64
	Prompts       prompts.System
	Services      *workflow.Services
}

// NewRuntime creates an API runtime with a module-scoped logger. Prompt
// overrides are served from the database when one is configured; otherwise
// the engine uses the built-in instructions.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	rt := &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		MaxUploadSize:  cfg.API.MaxUploadSizeBytes(),
	}

	source := prompts.Defaults()
	if db := infra.DB(); db != nil {
		rt.Prompts = prompts.New(db, rt.Logger, rt.Pagination)
		source = rt.Prompts
	}

	svc, err := workflow.Build(
		infra.Lifecycle.Context(),
		cfg,
		infra.Results,
		source,
		infra.HTTPClient,
		rt.Logger,
	)
	if err != nil {
		return nil, err
	}
	rt.Services = svc

	return rt, nil
}
