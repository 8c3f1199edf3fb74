package prompts

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/crediscope/pkg/handlers"
	"github.com/JaimeStill/crediscope/pkg/pagination"
	"github.com/JaimeStill/crediscope/pkg/routes"
)

// Handler exposes prompt overrides over HTTP.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
	}
}

// Routes returns the prompt route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/stages", Handler: h.Stages},
			{Method: "GET", Pattern: "/{stage}/default", Handler: h.Default},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.Activate},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.Deactivate},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

// Default returns the built-in instructions and output spec for a stage.
func (h *Handler) Default(w http.ResponseWriter, r *http.Request) {
	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	instructions, _ := DefaultInstructions(stage)
	spec, _ := Spec(stage)

	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"stage":        string(stage),
		"instructions": instructions,
		"spec":         spec,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	p, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, p)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.sys.Activate)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.sys.Deactivate)
}

func (h *Handler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id uuid.UUID) (*Prompt, error),
) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	p, err := fn(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}
