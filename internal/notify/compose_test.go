package notify_test

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/sgmr/internal/notify"
)

const reportText = `Medical Report
-----------------------
Patient Name: Ada Lovelace
Patient Email: ada@example.com
Symptoms: fever and chills

High Possibility: Influenza (FluX) -> 82.00% | Severity: Moderate
• Common Cold (ColdY) -> 10.00% | Severity: Mild

Model Accuracy: 97.12%`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newComposer(t *testing.T, format string) *notify.Composer {
	t.Helper()
	cfg := &notify.Config{AttachmentFormat: format}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	c, err := notify.NewComposer(cfg, discard())
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return c
}

func TestReviewURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://review.example.com", "https://review.example.com/?case_id=ab12cd34"},
		{"https://review.example.com/portal/", "https://review.example.com/portal/?case_id=ab12cd34"},
	}
	for _, tt := range tests {
		if got := notify.ReviewURL(tt.base, "ab12cd34"); got != tt.want {
			t.Errorf("ReviewURL(%q) = %s, want %s", tt.base, got, tt.want)
		}
	}
}

func TestAdminNotification(t *testing.T) {
	c := newComposer(t, notify.FormatPNG)

	msg, err := c.AdminNotification("reviewer@example.com", notify.AdminNotice{
		CaseID:       "ab12cd34",
		PatientEmail: "ada@example.com",
		ReviewURL:    "https://review.example.com/?case_id=ab12cd34",
		ReportText:   reportText,
	})
	if err != nil {
		t.Fatalf("AdminNotification: %v", err)
	}

	if msg.To != "reviewer@example.com" || msg.Kind != notify.KindAdminNotification {
		t.Errorf("addressing: got %s / %s", msg.To, msg.Kind)
	}
	if msg.Subject != "New Patient Report Received (Case ID: ab12cd34)" {
		t.Errorf("subject: got %s", msg.Subject)
	}
	for _, want := range []string{"Patient Email: ada@example.com", "Case ID: ab12cd34", "https://review.example.com/?case_id=ab12cd34"} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Body)
		}
	}

	if len(msg.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(msg.Attachments))
	}
	a := msg.Attachments[0]
	if a.Filename != "medical_report.png" || a.ContentType != "image/png" {
		t.Errorf("attachment: %s (%s)", a.Filename, a.ContentType)
	}

	img, err := png.Decode(bytes.NewReader(a.Data))
	if err != nil {
		t.Fatalf("attachment is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() <= 80 || b.Dy() <= 80 {
		t.Errorf("image too small for the report: %v", b)
	}
}

func TestRenderSizesToContent(t *testing.T) {
	r, err := notify.NewRenderer("", 20, 10, discard())
	if err != nil {
		t.Fatal(err)
	}

	short, err := r.PNG("one line")
	if err != nil {
		t.Fatal(err)
	}
	long, err := r.PNG("one line\na considerably longer second line of text\nthird")
	if err != nil {
		t.Fatal(err)
	}

	si, _ := png.Decode(bytes.NewReader(short))
	li, _ := png.Decode(bytes.NewReader(long))

	if li.Bounds().Dx() <= si.Bounds().Dx() {
		t.Errorf("width should grow with the longest line: %d <= %d", li.Bounds().Dx(), si.Bounds().Dx())
	}
	if li.Bounds().Dy() <= si.Bounds().Dy() {
		t.Errorf("height should grow with line count: %d <= %d", li.Bounds().Dy(), si.Bounds().Dy())
	}
}

func TestRenderWrapsLongLines(t *testing.T) {
	r, err := notify.NewRenderer("", 28, 40, discard())
	if err != nil {
		t.Fatal(err)
	}

	text := "Symptoms: " + strings.Repeat("fever ", 20_000) + "\n" + strings.Repeat("x", 5_000)
	data, err := r.PNG(text)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width > notify.MaxLineWidth+2*40 {
		t.Errorf("width %d exceeds wrap limit", cfg.Width)
	}
	if cfg.Width*cfg.Height > 16_000_000 {
		t.Errorf("canvas %dx%d exceeds pixel bound", cfg.Width, cfg.Height)
	}
}

func TestRenderRejectsOversizedCanvas(t *testing.T) {
	r, err := notify.NewRenderer("", 2000, 40, discard())
	if err != nil {
		t.Fatal(err)
	}

	_, err = r.PNG(strings.Repeat("W\n", 100))
	if !errors.Is(err, notify.ErrRenderFailed) {
		t.Errorf("err = %v, want ErrRenderFailed", err)
	}
}

func TestRendererFontFallback(t *testing.T) {
	r, err := notify.NewRenderer("/no/such/font.ttf", 20, 10, discard())
	if err != nil {
		t.Fatalf("missing font should fall back, got %v", err)
	}
	if _, err := r.PNG(reportText); err != nil {
		t.Errorf("fallback render: %v", err)
	}
}

func TestAdminNotificationPDF(t *testing.T) {
	c := newComposer(t, notify.FormatPDF)

	msg, err := c.AdminNotification("reviewer@example.com", notify.AdminNotice{
		CaseID:     "ab12cd34",
		ReportText: reportText,
	})
	if err != nil {
		t.Fatalf("AdminNotification: %v", err)
	}

	a := msg.Attachments[0]
	if a.Filename != "medical_report.pdf" || a.ContentType != "application/pdf" {
		t.Errorf("attachment: %s (%s)", a.Filename, a.ContentType)
	}

	pages, err := api.PageCount(bytes.NewReader(a.Data), nil)
	if err != nil {
		t.Fatalf("attachment is not a readable PDF: %v", err)
	}
	if pages != 1 {
		t.Errorf("pages = %d, want 1", pages)
	}
}

func TestVerifiedReply(t *testing.T) {
	msg := notify.VerifiedReply("ada@example.com", "Dr. Grey", "Rest and fluids.")

	if msg.Subject != "Verified Medical Report from Dr. Grey" {
		t.Errorf("subject: got %s", msg.Subject)
	}
	want := "Dear Patient,\n\nYour doctor (Dr. Grey) has reviewed your case.\n\nVerified Report:\n-------------------\nRest and fluids.\n\nThank you for using our SGMR service.\n"
	if msg.Body != want {
		t.Errorf("body:\n%q\nwant:\n%q", msg.Body, want)
	}
	if len(msg.Attachments) != 0 {
		t.Error("verified reply carries no attachment")
	}
}
