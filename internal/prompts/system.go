package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/crediscope/pkg/pagination"
)

// Source supplies composed prompt parts for a stage.
type Source interface {
	Instructions(ctx context.Context, stage Stage) (string, error)
	Spec(ctx context.Context, stage Stage) (string, error)
}

// System is the prompt override domain backed by the database.
type System interface {
	Source

	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)
}

type static struct{}

// Defaults returns a Source that serves only the built-in instructions.
// It is used when no database is configured.
func Defaults() Source {
	return static{}
}

func (static) Instructions(_ context.Context, stage Stage) (string, error) {
	return DefaultInstructions(stage)
}

func (static) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}
