package api

import (
	"github.com/JaimeStill/crediscope/internal/analyses"
	"github.com/JaimeStill/crediscope/internal/prompts"
)

// Domain holds all domain systems that comprise the API.
// Prompts is nil when no database is configured.
type Domain struct {
	Analyses analyses.System
	Prompts  prompts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	deps := analyses.Deps{
		DB:            runtime.DB(),
		Normalizer:    runtime.Services.Normalizer,
		Engine:        runtime.Services.Engine,
		Logger:        runtime.Logger,
		Pagination:    runtime.Pagination,
		MaxUploadSize: runtime.MaxUploadSize,
	}
	if runtime.Services.Extractor != nil {
		deps.Extractor = runtime.Services.Extractor
	}

	return &Domain{
		Analyses: analyses.New(deps),
		Prompts:  runtime.Prompts,
	}
}
