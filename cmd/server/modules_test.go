package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/crediscope/internal/infrastructure"
	"github.com/JaimeStill/crediscope/pkg/lifecycle"
)

func TestBuildRouterProbes(t *testing.T) {
	infra := &infrastructure.Infrastructure{Lifecycle: lifecycle.New()}
	router := buildRouter(infra)

	probe := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := probe("/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz: got %d, want 200", rec.Code)
	}

	if rec := probe("/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz before startup: got %d, want 503", rec.Code)
	}

	infra.Lifecycle.WaitForStartup()
	if rec := probe("/readyz"); rec.Code != http.StatusOK {
		t.Errorf("readyz after startup: got %d, want 200", rec.Code)
	}

	rec := probe("/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}

	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
