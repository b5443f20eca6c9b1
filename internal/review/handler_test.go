package review_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/internal/notify"
	"github.com/JaimeStill/sgmr/internal/review"
	"github.com/JaimeStill/sgmr/pkg/routes"
	"github.com/JaimeStill/sgmr/web/app"
)

func apiMux(rt *review.Runtime) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, review.NewHandler(rt, discard(), 1<<20).Routes())
	return mux
}

func serve(mux http.Handler, method, target, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerFind(t *testing.T) {
	f := newFixture(t)
	mux := apiMux(f.rt)

	rec := serve(mux, http.MethodGet, "/cases/"+f.caseID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body)
	}

	var c cases.Case
	if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
		t.Fatal(err)
	}
	if c.ID != f.caseID || c.Report == nil {
		t.Errorf("unexpected case: %+v", c)
	}

	if rec := serve(mux, http.MethodGet, "/cases/deadbeef", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown case: got %d, want 404", rec.Code)
	}
}

func TestHandlerReply(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		err    error
		status int
	}{
		{"delivered", "", `{"doctor":"Dr. Grey","text":"Rest."}`, nil, http.StatusOK},
		{"incomplete", "", `{"doctor":"","text":"Rest."}`, nil, http.StatusUnprocessableEntity},
		{"undelivered", "", `{"doctor":"Dr. Grey","text":"Rest."}`, notify.ErrDeliveryFailed, http.StatusBadGateway},
		{"malformed", "", `{"doctor":`, nil, http.StatusBadRequest},
		{"body too large", "", `{"doctor":"Dr. Grey","text":"` + strings.Repeat("a", 2<<20) + `"}`, nil, http.StatusRequestEntityTooLarge},
		{"unknown case", "deadbeef", `{"doctor":"Dr. Grey","text":"Rest."}`, nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.notifier.err = tt.err

			id := tt.id
			if id == "" {
				id = f.caseID
			}
			rec := serve(apiMux(f.rt), http.MethodPost, "/cases/"+id+"/reply", tt.body, "application/json")
			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusRequestEntityTooLarge && len(f.notifier.sent) != 0 {
				t.Error("oversized reply was delivered")
			}
		})
	}
}

func pageMux(t *testing.T, rt *review.Runtime) *http.ServeMux {
	t.Helper()
	templates, err := app.NewTemplates("/portal")
	if err != nil {
		t.Fatalf("NewTemplates: %v", err)
	}
	mux := http.NewServeMux()
	review.NewPage(rt, templates, app.Layout, app.PortalView, discard()).Register(mux)
	return mux
}

func TestPageShow(t *testing.T) {
	f := newFixture(t)
	mux := pageMux(t, f.rt)

	tests := []struct {
		name   string
		target string
		status int
		want   string
	}{
		{"case", "/?case_id=" + f.caseID, http.StatusOK, "Patient Email: ada@example.com"},
		{"missing id", "/", http.StatusBadRequest, "No case ID provided in the link."},
		{"unknown id", "/?case_id=deadbeef", http.StatusNotFound, "Case not found or expired."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, http.MethodGet, tt.target, "", "")
			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("page missing %q:\n%s", tt.want, rec.Body)
			}
		})
	}
}

func TestPageSubmit(t *testing.T) {
	f := newFixture(t)
	mux := pageMux(t, f.rt)
	form := "application/x-www-form-urlencoded"

	incomplete := url.Values{"case_id": {f.caseID}, "doctor": {"Dr. Grey"}}
	rec := serve(mux, http.MethodPost, "/", incomplete.Encode(), form)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), review.WarningIncomplete) {
		t.Errorf("incomplete: got %d:\n%s", rec.Code, rec.Body)
	}

	complete := url.Values{"doctor": {"Dr. Grey"}, "text": {"Rest and fluids."}}
	rec = serve(mux, http.MethodPost, "/?case_id="+f.caseID, complete.Encode(), form)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: got %d:\n%s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "Verified report sent to patient (ada@example.com) successfully!") {
		t.Errorf("missing confirmation:\n%s", rec.Body)
	}
	if len(f.notifier.sent) != 1 {
		t.Errorf("sent = %d, want 1", len(f.notifier.sent))
	}
}
