package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/crediscope/pkg/pagination"
	"github.com/JaimeStill/crediscope/pkg/query"
	"github.com/JaimeStill/crediscope/pkg/repository"
)

const returning = "RETURNING id, name, stage, instructions, description, active"

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("stage", "Stage").
	Project("instructions", "Instructions").
	Project("description", "Description").
	Project("active", "Active")

var defaultSort = query.SortField{Field: "Name"}

// Filters narrows prompt listings. Nil fields are ignored.
type Filters struct {
	Stage  *Stage `json:"stage,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

// FiltersFromQuery reads stage and active from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if s, err := ParseStage(values.Get("stage")); err == nil {
		f.Stage = &s
	}
	if a, err := strconv.ParseBool(values.Get("active")); err == nil {
		f.Active = &a
	}
	return f
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the database-backed prompt System.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

// Instructions returns the active override for stage, or the default when
// none is active. Lookup failures fall back to the default.
func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	fallback, err := DefaultInstructions(stage)
	if err != nil {
		return "", err
	}

	var text string
	err = r.db.QueryRowContext(
		ctx,
		"SELECT instructions FROM prompts WHERE stage = $1 AND active = true",
		stage,
	).Scan(&text)

	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, sql.ErrNoRows):
		return fallback, nil
	default:
		r.logger.Warn("prompt override lookup failed, using default", "stage", stage, "error", err)
		return fallback, nil
	}
}

func (r *repo) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description").
		WhereEquals("Stage", filters.Stage).
		WhereEquals("Active", filters.Active)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if strings.TrimSpace(cmd.Name) == "" || strings.TrimSpace(cmd.Instructions) == "" {
		return nil, ErrEmpty
	}
	if _, err := ParseStage(string(cmd.Stage)); err != nil {
		return nil, err
	}

	q := "INSERT INTO prompts(name, stage, instructions, description) VALUES ($1, $2, $3, $4) " + returning
	args := []any{cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description}

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt created", "id", p.ID, "name", p.Name, "stage", p.Stage)
	return &p, nil
}

// Activate makes id the single active override for its stage.
func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		var stage Stage
		if err := tx.QueryRowContext(ctx, "SELECT stage FROM prompts WHERE id = $1", id).Scan(&stage); err != nil {
			return Prompt{}, err
		}

		if _, err := tx.ExecContext(
			ctx,
			"UPDATE prompts SET active = false WHERE stage = $1 AND active = true",
			stage,
		); err != nil {
			return Prompt{}, fmt.Errorf("deactivate current: %w", err)
		}

		q := "UPDATE prompts SET active = true WHERE id = $1 " + returning
		return repository.QueryOne(ctx, tx, q, []any{id}, scanPrompt)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt activated", "id", p.ID, "stage", p.Stage)
	return &p, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q := "UPDATE prompts SET active = false WHERE id = $1 " + returning

	p, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt deactivated", "id", p.ID, "stage", p.Stage)
	return &p, nil
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(&p.ID, &p.Name, &p.Stage, &p.Instructions, &p.Description, &p.Active)
	return p, err
}
