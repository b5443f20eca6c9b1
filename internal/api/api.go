// Package api assembles the JSON API module over the intake and review workflows.
package api

import (
	"net/http"

	"github.com/JaimeStill/sgmr/internal/config"
	"github.com/JaimeStill/sgmr/internal/infrastructure"
	"github.com/JaimeStill/sgmr/pkg/metrics"
	"github.com/JaimeStill/sgmr/pkg/middleware"
	"github.com/JaimeStill/sgmr/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure, domain *Domain) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.RateLimit(&cfg.API.RateLimit))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger, metrics.ObserveHTTPRequest))

	return m, nil
}
