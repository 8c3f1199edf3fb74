package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/report"
	"github.com/JaimeStill/crediscope/internal/workflow"
	"github.com/JaimeStill/crediscope/pkg/pagination"
	"github.com/JaimeStill/crediscope/pkg/query"
	"github.com/JaimeStill/crediscope/pkg/repository"
)

type repo struct {
	db         *sql.DB
	normalizer *claims.Normalizer
	engine     Analyzer
	extractor  Extractor
	logger     *slog.Logger
	pagination pagination.Config
	maxUpload  int64
}

// Deps are the collaborators of the analyses System. DB and Extractor are
// optional: without a database history is disabled, and without an extractor
// image analysis is rejected.
type Deps struct {
	DB            *sql.DB
	Normalizer    *claims.Normalizer
	Engine        Analyzer
	Extractor     Extractor
	Logger        *slog.Logger
	Pagination    pagination.Config
	MaxUploadSize int64
}

// New creates the analyses System.
func New(d Deps) System {
	return &repo{
		db:         d.DB,
		normalizer: d.Normalizer,
		engine:     d.Engine,
		extractor:  d.Extractor,
		logger:     d.Logger.With("system", "analyses"),
		pagination: d.Pagination,
		maxUpload:  d.MaxUploadSize,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination, r.maxUpload)
}

func (r *repo) Analyze(ctx context.Context, cmd AnalyzeCommand) (*Response, error) {
	in, err := r.normalizer.Normalize(ctx, cmd.Request)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, in, workflow.Options{ForceRefresh: cmd.Refresh})
}

func (r *repo) AnalyzeImage(ctx context.Context, cmd ImageCommand) (*Response, error) {
	if len(cmd.Data) == 0 {
		return nil, ErrNoImage
	}
	if r.extractor == nil {
		return nil, fmt.Errorf("%w: text extraction is not configured", claims.ErrInputRejected)
	}

	out := r.extractor.Extract(ctx, cmd.Data)
	if !out.Available() {
		return nil, fmt.Errorf("%w: text extraction %s", claims.ErrInputRejected, out.Reason)
	}
	if out.Signal.Text == "" {
		return nil, fmt.Errorf("%w: no text found in image", claims.ErrInputRejected)
	}

	in, err := r.normalizer.Normalize(ctx, claims.Request{
		Kind:     claims.KindImageText,
		Content:  claims.Clip(out.Signal.Text),
		Language: cmd.Language,
	})
	if err != nil {
		return nil, err
	}

	return r.run(ctx, in, workflow.Options{ForceRefresh: cmd.Refresh, Extraction: &out})
}

func (r *repo) run(ctx context.Context, in claims.Input, opts workflow.Options) (*Response, error) {
	result, status, err := r.engine.Analyze(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	switch status {
	case cache.StatusMiss, cache.StatusRefresh, cache.StatusUnavailable:
		r.record(ctx, result)
	}

	return &Response{Result: result, Cache: status}, nil
}

// record stores a computed result. Failures are logged and never surface.
func (r *repo) record(ctx context.Context, result *report.Result) {
	if r.db == nil {
		return
	}

	doc, err := json.Marshal(result)
	if err != nil {
		r.logger.Warn("history record skipped", "error", err)
		return
	}

	insertQ := `
		INSERT INTO analyses(
			fingerprint, kind, domain, label, confidence,
			degraded, cache_status, content, analyzed_at, result
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(context.WithoutCancel(ctx), insertQ,
		result.Fingerprint.String(),
		result.Input.Kind,
		result.Input.Domain,
		result.Verdict.Label,
		result.Verdict.Confidence,
		result.Audit.Degraded,
		result.Audit.Cache,
		result.Input.Content,
		result.Audit.AnalyzedAt,
		doc,
	)
	if err != nil {
		r.logger.Warn("history record failed", "fingerprint", result.Fingerprint.Short(), "error", err)
		return
	}

	r.logger.Info("analysis recorded",
		"fingerprint", result.Fingerprint.Short(),
		"label", result.Verdict.Label,
		"confidence", result.Verdict.Confidence,
	)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Analysis], error) {
	if r.db == nil {
		return nil, ErrHistoryDisabled
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Content")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count analyses: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAnalysis)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

// Find returns the most recent stored result for a fingerprint.
func (r *repo) Find(ctx context.Context, fingerprint string) (*report.Result, error) {
	if r.db == nil {
		return nil, ErrHistoryDisabled
	}

	var doc []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT result FROM analyses WHERE fingerprint = $1 ORDER BY analyzed_at DESC LIMIT 1",
		fingerprint,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find analysis: %w", err)
	}

	var result report.Result
	if err := json.Unmarshal(doc, &result); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &result, nil
}
