package intake

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/sgmr/pkg/web"
)

// Page serves the patient submission form.
type Page struct {
	rt        *Runtime
	templates *web.TemplateSet
	layout    string
	view      web.ViewDef
	logger    *slog.Logger
}

type pageData struct {
	Form    Submission
	Warning string
	Error   string
	Success string
}

// NewPage creates the patient page rendering view through layout.
func NewPage(rt *Runtime, templates *web.TemplateSet, layout string, view web.ViewDef, logger *slog.Logger) *Page {
	return &Page{
		rt:        rt,
		templates: templates,
		layout:    layout,
		view:      view,
		logger:    logger.With("handler", "patient"),
	}
}

// Register adds the page routes to mux.
func (p *Page) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", p.Form)
	mux.HandleFunc("POST /{$}", p.Submit)
}

// Form renders an empty submission form.
func (p *Page) Form(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, pageData{})
}

// Submit runs the intake workflow for the posted form. The form keeps its
// values when the submission is rejected or classification fails.
func (p *Page) Submit(w http.ResponseWriter, r *http.Request) {
	sub := Submission{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Symptoms: r.PostFormValue("symptoms"),
	}

	result, err := Execute(r.Context(), p.rt, sub)
	if err != nil {
		data := pageData{Form: sub, Error: "The diagnosis could not be completed. Please try again later."}
		p.render(w, MapHTTPStatus(err), data)
		return
	}

	switch {
	case result.State == AwaitingInput:
		p.render(w, http.StatusUnprocessableEntity, pageData{Form: sub, Warning: result.Warning.Message})
	case result.Delivered:
		p.render(w, http.StatusOK, pageData{Success: result.Notice})
	default:
		p.render(w, http.StatusOK, pageData{Error: result.Notice})
	}
}

func (p *Page) render(w http.ResponseWriter, status int, data pageData) {
	if err := p.templates.Render(w, status, p.layout, p.view, data); err != nil {
		p.logger.Error("render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
