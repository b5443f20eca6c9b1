// Package app embeds the server-rendered patient and doctor pages.
package app

import (
	"embed"
	"net/http"

	"github.com/JaimeStill/sgmr/pkg/web"
)

//go:embed templates static
var FS embed.FS

// Layout is the outer template every view renders through.
const Layout = "layout"

// Page views.
var (
	PatientView = web.ViewDef{Template: "patient.html", Title: "Medical Report Generator"}
	PortalView  = web.ViewDef{Template: "portal.html", Title: "Doctor Review Portal"}
)

// NewTemplates parses the layouts and page views for a module mounted at basePath.
func NewTemplates(basePath string) (*web.TemplateSet, error) {
	return web.NewTemplateSet(
		FS,
		"templates/layouts/*.html",
		"templates/views",
		basePath,
		[]web.ViewDef{PatientView, PortalView},
	)
}

// Static serves the embedded stylesheet under /static/.
func Static() http.HandlerFunc {
	return web.DistServer(FS, "static", "/static")
}
