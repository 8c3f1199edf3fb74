package analyses

import (
	"context"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/report"
	"github.com/JaimeStill/crediscope/internal/workflow"
	"github.com/JaimeStill/crediscope/pkg/pagination"
)

// System defines the public contract for analysis operations.
type System interface {
	Handler() *Handler

	Analyze(ctx context.Context, cmd AnalyzeCommand) (*Response, error)
	AnalyzeImage(ctx context.Context, cmd ImageCommand) (*Response, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Analysis], error)

	Find(ctx context.Context, fingerprint string) (*report.Result, error)
}

// Analyzer runs the verification engine.
type Analyzer interface {
	Analyze(ctx context.Context, in claims.Input, opts workflow.Options) (*report.Result, cache.Status, error)
}

// Extractor reads text out of an image.
type Extractor interface {
	Extract(ctx context.Context, image []byte) providers.Outcome
}

var (
	_ Analyzer  = (*workflow.Engine)(nil)
	_ Extractor = (*providers.Extractor)(nil)
)
