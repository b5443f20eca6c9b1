// Package module mounts independently middleware-wrapped handlers under
// single-segment path prefixes such as /api, /patient and /portal.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/sgmr/pkg/middleware"
)

// Module serves one prefix. Requests reach the inner handler with the
// prefix removed, so "/portal/?case_id=x" arrives as "/?case_id=x".
type Module struct {
	prefix string
	inner  http.Handler
	stack  middleware.System
}

// New creates a Module for prefix. It panics when prefix is not a single
// segment beginning with a slash; mounting is a startup-time decision.
func New(prefix string, inner http.Handler) *Module {
	if err := checkPrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{prefix: prefix, inner: inner, stack: middleware.New()}
}

// Prefix returns the mount point.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw to the module's middleware.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.stack.Use(mw)
}

// Handler returns the inner handler wrapped in the module middleware.
func (m *Module) Handler() http.Handler {
	return m.stack.Apply(m.inner)
}

// Serve dispatches req to the module with its prefix stripped.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	rest := strings.TrimPrefix(req.URL.Path, m.prefix)
	if rest == "" {
		rest = "/"
	}

	r2 := req.Clone(req.Context())
	r2.URL.Path = rest
	r2.URL.RawPath = ""
	m.Handler().ServeHTTP(w, r2)
}

func checkPrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix is empty")
	case prefix[0] != '/':
		return fmt.Errorf("module prefix %q must start with /", prefix)
	case strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("module prefix %q must be a single segment", prefix)
	}
	return nil
}
