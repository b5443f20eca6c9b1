package cases

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/sgmr/internal/diagnosis"
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// IDPattern is the OpenAPI pattern for case identifiers.
const IDPattern = `^[0-9a-f]{8}$`

// Case is a persisted patient submission. A case is written once and never
// modified; a doctor review is stored alongside it as a separate record.
type Case struct {
	ID           string            `json:"id"`
	PatientEmail string            `json:"patient_email"`
	Report       *diagnosis.Report `json:"report,omitempty"`
	ReportText   string            `json:"report_text"`
	CreatedAt    time.Time         `json:"created_at,omitzero"`
	Review       *Review           `json:"review,omitempty"`
}

// Review records the first verified reply sent for a case.
type Review struct {
	Doctor string    `json:"doctor"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Reviewed reports whether a verified reply has been recorded.
func (c *Case) Reviewed() bool {
	return c.Review != nil
}

// IDFunc generates candidate case identifiers.
type IDFunc func() string

// NewID returns the first eight hex characters of a random UUID.
func NewID() string {
	return uuid.NewString()[:8]
}

// ValidID reports whether id has the shape of a case identifier.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
