package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/sgmr/internal/api"
	"github.com/JaimeStill/sgmr/internal/config"
	"github.com/JaimeStill/sgmr/internal/infrastructure"
	"github.com/JaimeStill/sgmr/internal/intake"
	"github.com/JaimeStill/sgmr/internal/review"
	"github.com/JaimeStill/sgmr/pkg/handlers"
	"github.com/JaimeStill/sgmr/pkg/metrics"
	"github.com/JaimeStill/sgmr/pkg/middleware"
	"github.com/JaimeStill/sgmr/pkg/module"
	"github.com/JaimeStill/sgmr/web/app"
)

const (
	patientPrefix = "/patient"
	portalPrefix  = "/portal"
)

type Modules struct {
	API     *module.Module
	Patient *module.Module
	Portal  *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	domain, err := api.NewDomain(cfg, infra)
	if err != nil {
		return nil, err
	}

	apiModule, err := api.NewModule(cfg, infra, domain)
	if err != nil {
		return nil, err
	}

	patientTemplates, err := app.NewTemplates(patientPrefix)
	if err != nil {
		return nil, err
	}
	patientMux := http.NewServeMux()
	intake.NewPage(domain.Intake, patientTemplates, app.Layout, app.PatientView, infra.Logger).Register(patientMux)

	portalTemplates, err := app.NewTemplates(portalPrefix)
	if err != nil {
		return nil, err
	}
	portalMux := http.NewServeMux()
	review.NewPage(domain.Review, portalTemplates, app.Layout, app.PortalView, infra.Logger).Register(portalMux)

	return &Modules{
		API:     apiModule,
		Patient: pageModule(patientPrefix, patientMux, infra, cfg),
		Portal:  pageModule(portalPrefix, portalMux, infra, cfg),
	}, nil
}

func pageModule(prefix string, mux *http.ServeMux, infra *infrastructure.Infrastructure, cfg *config.Config) *module.Module {
	m := module.New(prefix, mux)
	m.Use(middleware.RateLimit(&cfg.API.RateLimit))
	m.Use(middleware.Logger(infra.Logger.With("module", prefix[1:]), metrics.ObserveHTTPRequest))
	return m
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Patient)
	router.Mount(m.Portal)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, patientPrefix+"/", http.StatusFound)
	})

	router.HandleNative("GET /static/", app.Static())

	router.HandleNative("GET /metrics", promhttp.Handler().ServeHTTP)

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ready, checks := infra.Lifecycle.Status()
		body := struct {
			Status string          `json:"status"`
			Checks map[string]bool `json:"checks"`
		}{"ready", checks}

		status := http.StatusOK
		if !ready {
			status, body.Status = http.StatusServiceUnavailable, "not ready"
		}
		handlers.RespondJSON(w, status, body)
	})

	return router
}
