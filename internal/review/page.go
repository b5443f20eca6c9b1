package review

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/pkg/web"
)

// Page serves the doctor portal at /?case_id=<id>.
type Page struct {
	rt        *Runtime
	templates *web.TemplateSet
	layout    string
	view      web.ViewDef
	logger    *slog.Logger
}

type pageData struct {
	Case    *cases.Case
	Doctor  string
	Text    string
	Warning string
	Error   string
	Success string
}

// NewPage creates the portal page rendering view through layout.
func NewPage(rt *Runtime, templates *web.TemplateSet, layout string, view web.ViewDef, logger *slog.Logger) *Page {
	return &Page{
		rt:        rt,
		templates: templates,
		layout:    layout,
		view:      view,
		logger:    logger.With("handler", "portal"),
	}
}

// Register adds the page routes to mux.
func (p *Page) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", p.Show)
	mux.HandleFunc("POST /{$}", p.Submit)
}

// Show renders the case named by the case_id query parameter.
func (p *Page) Show(w http.ResponseWriter, r *http.Request) {
	result, err := Fetch(r.Context(), p.rt, r.URL.Query().Get("case_id"))
	if err != nil {
		p.fetchFailed(w, err)
		return
	}
	p.render(w, http.StatusOK, pageData{Case: result.Case})
}

// Submit sends the posted reply. The form keeps its values unless the reply
// was delivered.
func (p *Page) Submit(w http.ResponseWriter, r *http.Request) {
	caseID := r.PostFormValue("case_id")
	if caseID == "" {
		caseID = r.URL.Query().Get("case_id")
	}
	reply := Reply{
		Doctor: r.PostFormValue("doctor"),
		Text:   r.PostFormValue("text"),
	}

	result, err := Send(r.Context(), p.rt, caseID, reply)
	if err != nil {
		p.fetchFailed(w, err)
		return
	}

	data := pageData{Case: result.Case, Doctor: reply.Doctor, Text: reply.Text}
	switch {
	case result.Warning != "":
		data.Warning = result.Warning
		p.render(w, http.StatusUnprocessableEntity, data)
	case !result.Delivered:
		data.Error = result.Notice
		p.render(w, http.StatusBadGateway, data)
	default:
		p.render(w, http.StatusOK, pageData{Case: result.Case, Success: result.Notice})
	}
}

func (p *Page) fetchFailed(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingCaseID):
		p.render(w, http.StatusBadRequest, pageData{Warning: "No case ID provided in the link."})
	case errors.Is(err, cases.ErrNotFound):
		p.render(w, http.StatusNotFound, pageData{Error: "Case not found or expired."})
	default:
		p.render(w, http.StatusInternalServerError, pageData{Error: "The case could not be loaded. Please try again later."})
	}
}

func (p *Page) render(w http.ResponseWriter, status int, data pageData) {
	if err := p.templates.Render(w, status, p.layout, p.view, data); err != nil {
		p.logger.Error("render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
