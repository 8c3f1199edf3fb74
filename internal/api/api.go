// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/crediscope/internal/config"
	"github.com/JaimeStill/crediscope/internal/infrastructure"
	"github.com/JaimeStill/crediscope/pkg/middleware"
	"github.com/JaimeStill/crediscope/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime, err := NewRuntime(cfg, infra)
	if err != nil {
		return nil, err
	}
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.Metrics("api"))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
