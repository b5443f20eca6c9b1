package review_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/internal/diagnosis"
	"github.com/JaimeStill/sgmr/internal/notify"
	"github.com/JaimeStill/sgmr/internal/review"
	"github.com/JaimeStill/sgmr/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeNotifier struct {
	sent []notify.Message
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, msg notify.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fixture struct {
	rt       *review.Runtime
	notifier *fakeNotifier
	caseID   string
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.NewFile(t.TempDir(), discard())
	if err != nil {
		t.Fatal(err)
	}
	sys := cases.New(store, discard(), nil)

	report := &diagnosis.Report{
		PatientName:  "Ada Lovelace",
		PatientEmail: "ada@example.com",
		Symptoms:     "fever and chills",
		Candidates: []diagnosis.Candidate{
			{Label: "Influenza", RawLabel: "FluX", Probability: 0.82, Severity: "Moderate"},
		},
		ModelAccuracy: 0.9712,
	}
	c, err := sys.Create(context.Background(), report, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}

	n := &fakeNotifier{}
	return &fixture{
		rt: &review.Runtime{
			Cases:    sys,
			Notifier: n,
			Logger:   discard(),
			Now:      func() time.Time { return fixedNow },
		},
		notifier: n,
		caseID:   c.ID,
	}
}

func TestFetch(t *testing.T) {
	f := newFixture(t)

	result, err := review.Fetch(context.Background(), f.rt, f.caseID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.State != review.AwaitingDoctorInput {
		t.Errorf("state: got %s", result.State)
	}
	if result.Case.PatientEmail != "ada@example.com" {
		t.Errorf("email: got %s", result.Case.PatientEmail)
	}
	if !strings.HasPrefix(result.Case.ReportText, "Medical Report\n") {
		t.Errorf("report text: %q", result.Case.ReportText)
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		want  error
		state review.State
	}{
		{"missing", "", review.ErrMissingCaseID, review.AwaitingCaseID},
		{"blank", "   ", review.ErrMissingCaseID, review.AwaitingCaseID},
		{"unknown", "deadbeef", cases.ErrNotFound, review.Fetching},
		{"malformed", "../../etc/passwd", cases.ErrNotFound, review.Fetching},
	}

	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := review.Fetch(context.Background(), f.rt, tt.id)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if state, ok := review.HaltedIn(err); !ok || state != tt.state {
				t.Errorf("halted in %q (%v), want %q", state, ok, tt.state)
			}
		})
	}
}

func TestSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := review.Send(ctx, f.rt, f.caseID, review.Reply{Doctor: " Dr.  Grey ", Text: "\nRest and fluids.\n"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.State != review.Done || !result.Delivered {
		t.Fatalf("state = %s delivered = %v", result.State, result.Delivered)
	}
	if result.Notice != "Verified report sent to patient (ada@example.com) successfully!" {
		t.Errorf("notice: got %q", result.Notice)
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(f.notifier.sent))
	}
	msg := f.notifier.sent[0]
	if msg.To != "ada@example.com" || msg.Subject != "Verified Medical Report from Dr. Grey" {
		t.Errorf("message: to=%s subject=%s", msg.To, msg.Subject)
	}
	if len(msg.Attachments) != 0 {
		t.Error("verified reply should carry no attachment")
	}

	stored, err := f.rt.Cases.Find(ctx, f.caseID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Reviewed() {
		t.Fatal("case should be reviewed after a delivered reply")
	}
	if stored.Review.Doctor != "Dr. Grey" || stored.Review.Text != "Rest and fluids." || !stored.Review.SentAt.Equal(fixedNow) {
		t.Errorf("review: %+v", stored.Review)
	}
}

func TestSendTwiceKeepsFirstReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := review.Send(ctx, f.rt, f.caseID, review.Reply{Doctor: "Dr. Grey", Text: "first"}); err != nil {
		t.Fatal(err)
	}
	result, err := review.Send(ctx, f.rt, f.caseID, review.Reply{Doctor: "Dr. House", Text: "second"})
	if err != nil {
		t.Fatal(err)
	}
	if result.State != review.Done || len(f.notifier.sent) != 2 {
		t.Errorf("second reply should still be delivered: %s, sent=%d", result.State, len(f.notifier.sent))
	}
	if result.Case.Review.Doctor != "Dr. Grey" {
		t.Errorf("first review should win, got %s", result.Case.Review.Doctor)
	}
}

func TestSendIncomplete(t *testing.T) {
	tests := []struct {
		name  string
		reply review.Reply
	}{
		{"no doctor", review.Reply{Text: "Rest."}},
		{"no text", review.Reply{Doctor: "Dr. Grey", Text: " \n "}},
		{"empty", review.Reply{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			result, err := review.Send(context.Background(), f.rt, f.caseID, tt.reply)
			if err != nil {
				t.Fatalf("incomplete reply is not an error: %v", err)
			}
			if result.State != review.AwaitingDoctorInput || result.Warning != review.WarningIncomplete {
				t.Errorf("got state %s warning %q", result.State, result.Warning)
			}
			if len(f.notifier.sent) != 0 {
				t.Error("nothing should be sent")
			}
		})
	}
}

func TestSendDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = notify.ErrDeliveryFailed
	ctx := context.Background()

	result, err := review.Send(ctx, f.rt, f.caseID, review.Reply{Doctor: "Dr. Grey", Text: "Rest."})
	if err != nil {
		t.Fatalf("delivery failure is reported on the result: %v", err)
	}
	if result.Delivered || result.State != review.AwaitingDoctorInput {
		t.Errorf("state = %s delivered = %v", result.State, result.Delivered)
	}
	if !strings.HasPrefix(result.Notice, "Error sending email") {
		t.Errorf("notice: got %q", result.Notice)
	}

	stored, err := f.rt.Cases.Find(ctx, f.caseID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Reviewed() {
		t.Error("undelivered reply must not mark the case reviewed")
	}
}

func TestSendUnknownCase(t *testing.T) {
	f := newFixture(t)

	_, err := review.Send(context.Background(), f.rt, "0badcafe", review.Reply{Doctor: "Dr. Grey", Text: "Rest."})
	if !errors.Is(err, cases.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
