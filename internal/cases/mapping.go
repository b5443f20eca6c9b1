package cases

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JaimeStill/sgmr/internal/diagnosis"
)

// record is the stored shape of a case. Report holds either a structured
// report object or, for records written by the first release, the rendered
// report text as a JSON string.
type record struct {
	ID         string          `json:"id,omitempty"`
	Email      string          `json:"email"`
	Report     json.RawMessage `json:"report"`
	ReportText string          `json:"report_text,omitempty"`
	CreatedAt  time.Time       `json:"created_at,omitzero"`
}

func caseKey(id string) string {
	return "cases/" + id + ".json"
}

func reviewKey(id string) string {
	return "reviews/" + id + ".json"
}

func encodeCase(c *Case) ([]byte, error) {
	report, err := json.Marshal(c.Report)
	if err != nil {
		return nil, err
	}
	return json.Marshal(record{
		ID:         c.ID,
		Email:      c.PatientEmail,
		Report:     report,
		ReportText: c.ReportText,
		CreatedAt:  c.CreatedAt,
	})
}

// decodeCase reads a stored record. Legacy records carry only the rendered
// text; the structured report is recovered with diagnosis.Parse and left nil
// when the text does not follow the template.
func decodeCase(id string, data []byte) (*Case, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	c := &Case{
		ID:           id,
		PatientEmail: rec.Email,
		ReportText:   rec.ReportText,
		CreatedAt:    rec.CreatedAt,
	}

	raw := bytes.TrimSpace(rec.Report)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		c.ReportText = text
		if r, err := diagnosis.Parse(text); err == nil {
			c.Report = r
		}
	default:
		var r diagnosis.Report
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		c.Report = &r
	}

	if c.ReportText == "" && c.Report != nil {
		c.ReportText = c.Report.Text()
	}
	return c, nil
}
