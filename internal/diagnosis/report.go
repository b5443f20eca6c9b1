// Package diagnosis turns ranked classifier output into patient reports and
// renders them to the canonical report text.
package diagnosis

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/JaimeStill/sgmr/internal/classifier"
)

// TopK is the number of candidates retained in a report.
const TopK = 3

// Patient identifies who submitted the symptoms.
type Patient struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Symptoms string `json:"symptoms"`
}

// Candidate is one ranked condition in a report.
type Candidate struct {
	Label       string  `json:"label"`
	RawLabel    string  `json:"raw_label"`
	Probability float64 `json:"probability"`
	Severity    string  `json:"severity"`
}

// Report is an immutable diagnosis result. Candidates are ordered by
// descending probability and hold at most TopK entries.
type Report struct {
	PatientName   string      `json:"patient_name"`
	PatientEmail  string      `json:"patient_email"`
	Symptoms      string      `json:"symptoms"`
	Candidates    []Candidate `json:"candidates"`
	ModelAccuracy float64     `json:"model_accuracy"`
}

// Rank returns the k most probable predictions in descending order.
// Equal probabilities keep their classifier output order.
func Rank(preds []classifier.Prediction, k int) []classifier.Prediction {
	ranked := slices.Clone(preds)
	slices.SortStableFunc(ranked, func(a, b classifier.Prediction) int {
		return cmp.Compare(b.Probability, a.Probability)
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Build ranks preds and resolves each kept candidate through catalog.
func Build(p Patient, preds []classifier.Prediction, catalog *Catalog, accuracy float64) (*Report, error) {
	if len(preds) == 0 {
		return nil, ErrNoCandidates
	}
	for _, pr := range preds {
		if !(pr.Probability >= 0 && pr.Probability <= 1) {
			return nil, fmt.Errorf("%w: %s=%v", ErrInvalidProbability, pr.Label, pr.Probability)
		}
	}

	ranked := Rank(preds, TopK)
	candidates := make([]Candidate, len(ranked))
	for i, pr := range ranked {
		candidates[i] = Candidate{
			Label:       catalog.Name(pr.Label),
			RawLabel:    pr.Label,
			Probability: pr.Probability,
			Severity:    catalog.Severity(pr.Label),
		}
	}

	return &Report{
		PatientName:   p.Name,
		PatientEmail:  p.Email,
		Symptoms:      p.Symptoms,
		Candidates:    candidates,
		ModelAccuracy: accuracy,
	}, nil
}

// Top returns the highest ranked candidate.
func (r *Report) Top() Candidate {
	return r.Candidates[0]
}
