package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/sgmr/internal/config"
	"github.com/JaimeStill/sgmr/internal/intake"
	"github.com/JaimeStill/sgmr/internal/review"
	"github.com/JaimeStill/sgmr/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	serveDocument, err := buildDocument(cfg).Handler()
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}

	registered := routes.Register(
		mux,
		intake.NewHandler(domain.Intake, runtime.Logger, runtime.MaxBodySize).Routes(),
		review.NewHandler(domain.Review, runtime.Logger, runtime.MaxBodySize).Routes(),
		routes.Group{
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/openapi.json", Handler: serveDocument},
			},
		},
	)
	runtime.Logger.Debug("api routes registered", "routes", registered)
	return nil
}
