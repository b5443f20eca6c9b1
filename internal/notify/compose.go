package notify

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

const adminBody = `Dear Doctor,

A new patient report has been submitted for review.

Patient Email: %s
Case ID: %s

Please review and send your verified diagnosis back to the patient using the link below:
%s

Best regards,
Self-Generating Medical Report System
`

const replyBody = `Dear Patient,

Your doctor (%s) has reviewed your case.

Verified Report:
-------------------
%s

Thank you for using our SGMR service.
`

// AdminNotice carries the case details announced to the reviewer.
type AdminNotice struct {
	CaseID       string
	PatientEmail string
	ReviewURL    string
	ReportText   string
}

// Composer builds the two message templates. It is safe for concurrent use.
type Composer struct {
	renderer *Renderer
	format   string
}

// NewComposer creates a Composer using the rendering settings in cfg.
func NewComposer(cfg *Config, logger *slog.Logger) (*Composer, error) {
	r, err := NewRenderer(cfg.FontPath, cfg.FontSize, cfg.Padding, logger.With("system", "notify"))
	if err != nil {
		return nil, err
	}
	return &Composer{renderer: r, format: cfg.AttachmentFormat}, nil
}

// ReviewURL returns the review page link for a case: <base>/?case_id=<id>.
func ReviewURL(base, caseID string) string {
	return strings.TrimRight(base, "/") + "/?case_id=" + url.QueryEscape(caseID)
}

// AdminNotification addresses a new-case notice to the reviewer with the
// rendered report attached.
func (c *Composer) AdminNotification(to string, n AdminNotice) (Message, error) {
	attachment, err := c.attachment(n.ReportText)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Kind:        KindAdminNotification,
		To:          to,
		Subject:     fmt.Sprintf("New Patient Report Received (Case ID: %s)", n.CaseID),
		Body:        fmt.Sprintf(adminBody, n.PatientEmail, n.CaseID, n.ReviewURL),
		Attachments: []Attachment{attachment},
	}, nil
}

// VerifiedReply addresses the doctor's verified text to the patient.
func VerifiedReply(to, doctor, text string) Message {
	return Message{
		Kind:    KindVerifiedReply,
		To:      to,
		Subject: "Verified Medical Report from " + doctor,
		Body:    fmt.Sprintf(replyBody, doctor, text),
	}
}

func (c *Composer) attachment(text string) (Attachment, error) {
	img, err := c.renderer.PNG(text)
	if err != nil {
		return Attachment{}, err
	}

	if c.format == FormatPDF {
		doc, err := pdfFromPNG(img)
		if err != nil {
			return Attachment{}, err
		}
		return Attachment{Filename: "medical_report.pdf", ContentType: "application/pdf", Data: doc}, nil
	}

	return Attachment{Filename: "medical_report.png", ContentType: "image/png", Data: img}, nil
}
