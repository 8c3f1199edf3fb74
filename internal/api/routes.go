package api

import (
	"net/http"

	"github.com/JaimeStill/crediscope/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	groups := []routes.Group{domain.Analyses.Handler().Routes()}
	if domain.Prompts != nil {
		groups = append(groups, domain.Prompts.Handler().Routes())
	}
	routes.Register(mux, groups...)
}
