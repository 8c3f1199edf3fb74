package prompts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/crediscope/internal/prompts"
	"github.com/JaimeStill/crediscope/pkg/pagination"
)

type mockSystem struct {
	listFn       func(ctx context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error)
	createFn     func(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error)
	activateFn   func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
	deactivateFn func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
}

func (m *mockSystem) Handler() *prompts.Handler { return newTestHandler(m) }

func (m *mockSystem) Instructions(ctx context.Context, stage prompts.Stage) (string, error) {
	return prompts.DefaultInstructions(stage)
}

func (m *mockSystem) Spec(ctx context.Context, stage prompts.Stage) (string, error) {
	return prompts.Spec(stage)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Create(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Activate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.activateFn(ctx, id)
}

func (m *mockSystem) Deactivate(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.deactivateFn(ctx, id)
}

func newTestHandler(sys prompts.System) *prompts.Handler {
	return prompts.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *prompts.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func samplePrompt() prompts.Prompt {
	return prompts.Prompt{
		ID:           uuid.MustParse("7d2f4c1e-58a3-4f0b-9d6e-2b8c1a0e5f31"),
		Name:         "health-skeptic",
		Stage:        prompts.StageSynthesize,
		Instructions: "Weigh public health agency statements above social media posts.",
		Description:  ptr("Stricter medical claim review"),
	}
}

func TestHandlerList(t *testing.T) {
	var gotFilters prompts.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters prompts.Filters) (*pagination.PageResult[prompts.Prompt], error) {
			gotFilters = filters
			result := pagination.NewPageResult([]prompts.Prompt{samplePrompt()}, 1, page.Page, page.PageSize)
			return &result, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, httptest.NewRequest("GET", "/prompts?active=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[prompts.Prompt]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || len(result.Data) != 1 {
		t.Errorf("result = %+v, want one prompt", result)
	}
	if gotFilters.Active == nil || !*gotFilters.Active {
		t.Errorf("filters.Active = %v, want true", gotFilters.Active)
	}
}

func TestHandlerDefault(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{}))

	t.Run("known stage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts/synthesize/default", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["stage"] != "synthesize" || body["instructions"] == "" || body["spec"] == "" {
			t.Errorf("body = %v, want populated synthesize defaults", body)
		}
	})

	t.Run("unknown stage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts/classify/default", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerCreate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		createFn func(context.Context, prompts.CreateCommand) (*prompts.Prompt, error)
		want     int
	}{
		{
			name: "created",
			body: `{"name":"health-skeptic","stage":"synthesize","instructions":"Weigh agencies."}`,
			createFn: func(_ context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
				p := samplePrompt()
				p.Name = cmd.Name
				return &p, nil
			},
			want: http.StatusCreated,
		},
		{
			name: "duplicate name",
			body: `{"name":"health-skeptic","stage":"synthesize","instructions":"Weigh agencies."}`,
			createFn: func(context.Context, prompts.CreateCommand) (*prompts.Prompt, error) {
				return nil, prompts.ErrDuplicate
			},
			want: http.StatusConflict,
		},
		{
			name: "invalid stage",
			body: `{"name":"x","stage":"classify","instructions":"y"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "malformed body",
			body: `{`,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{createFn: tt.createFn}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/prompts", bytes.NewBufferString(tt.body))
			setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerActivate(t *testing.T) {
	id := samplePrompt().ID
	sys := &mockSystem{
		activateFn: func(_ context.Context, got uuid.UUID) (*prompts.Prompt, error) {
			if got != id {
				return nil, prompts.ErrNotFound
			}
			p := samplePrompt()
			p.Active = true
			return &p, nil
		},
		deactivateFn: func(context.Context, uuid.UUID) (*prompts.Prompt, error) {
			return nil, prompts.ErrNotFound
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"activate existing", "/prompts/" + id.String() + "/activate", http.StatusOK},
		{"activate missing", "/prompts/" + uuid.NewString() + "/activate", http.StatusNotFound},
		{"invalid id", "/prompts/not-a-uuid/activate", http.StatusBadRequest},
		{"deactivate missing", "/prompts/" + id.String() + "/deactivate", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
