package main

import (
	"time"

	"github.com/JaimeStill/sgmr/internal/config"
	"github.com/JaimeStill/sgmr/internal/infrastructure"
)

// Server wires infrastructure, the API and page modules, and the listener.
type Server struct {
	infra *infrastructure.Infrastructure
	http  *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)
	infra.Logger.Info("modules mounted", "prefixes", router.Prefixes())

	return &Server{
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start fails fast if a subsystem cannot register or the port is taken.
// Readiness is reported once the startup hooks finish.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		ready, checks := s.infra.Lifecycle.Status()
		if ready {
			s.infra.Logger.Info("ready to accept cases", "checks", checks)
			return
		}
		s.infra.Logger.Warn("started with unready subsystems", "checks", checks)
	}()
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("shutting down", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
