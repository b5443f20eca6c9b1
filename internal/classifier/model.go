package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
)

// tokens mirrors the default scikit-learn token pattern (?u)\b\w\w+\b.
var tokens = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// artifact is the JSON export of a fitted TF-IDF vectorizer and linear model.
type artifact struct {
	Name        string         `json:"name"`
	Accuracy    float64        `json:"accuracy"`
	Classes     []string       `json:"classes"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Coef        [][]float64    `json:"coef"`
	Intercept   []float64      `json:"intercept"`
	SublinearTF bool           `json:"sublinear_tf"`
}

// Model is a linear text classifier over l2-normalized TF-IDF features.
// It is immutable after LoadModel returns.
type Model struct {
	a artifact
}

// LoadModel reads and validates a model artifact from path.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return ParseModel(data)
}

// ParseModel decodes and validates a JSON model artifact.
func ParseModel(data []byte) (*Model, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if a.Name == "" {
		a.Name = "linear-tfidf"
	}
	return &Model{a: a}, nil
}

func (a *artifact) validate() error {
	n := len(a.Classes)
	if n < 2 {
		return fmt.Errorf("need at least two classes, got %d", n)
	}

	rows := n
	if n == 2 && len(a.Coef) == 1 {
		rows = 1
	}
	if len(a.Coef) != rows || len(a.Intercept) != rows {
		return fmt.Errorf("coef/intercept rows = %d/%d, want %d", len(a.Coef), len(a.Intercept), rows)
	}

	features := len(a.IDF)
	for i, row := range a.Coef {
		if len(row) != features {
			return fmt.Errorf("coef row %d has %d features, want %d", i, len(row), features)
		}
	}
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= features {
			return fmt.Errorf("vocabulary term %q index %d out of range", term, idx)
		}
	}
	if a.Accuracy < 0 || a.Accuracy > 1 {
		return fmt.Errorf("accuracy %v outside [0, 1]", a.Accuracy)
	}
	return nil
}

// Info returns the model name and held-out accuracy.
func (m *Model) Info() Info {
	return Info{Name: m.a.Name, Accuracy: m.a.Accuracy}
}

// Classify returns one prediction per class in artifact order.
func (m *Model) Classify(ctx context.Context, text string) ([]Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassifyFailed, err)
	}

	x := m.vectorize(text)
	probs := m.probabilities(x)

	preds := make([]Prediction, len(m.a.Classes))
	for i, label := range m.a.Classes {
		preds[i] = Prediction{Label: label, Probability: probs[i]}
	}
	return preds, nil
}

// vectorize returns the sparse l2-normalized tf-idf vector for text.
func (m *Model) vectorize(text string) map[int]float64 {
	x := make(map[int]float64)
	for _, tok := range tokens.FindAllString(strings.ToLower(text), -1) {
		if idx, ok := m.a.Vocabulary[tok]; ok {
			x[idx]++
		}
	}

	var norm float64
	for idx, tf := range x {
		if m.a.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		v := tf * m.a.IDF[idx]
		x[idx] = v
		norm += v * v
	}

	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range x {
			x[idx] /= norm
		}
	}
	return x
}

func (m *Model) probabilities(x map[int]float64) []float64 {
	scores := make([]float64, len(m.a.Coef))
	for r, row := range m.a.Coef {
		s := m.a.Intercept[r]
		for idx, v := range x {
			s += row[idx] * v
		}
		scores[r] = s
	}

	if len(scores) == 1 {
		p := 1 / (1 + math.Exp(-scores[0]))
		return []float64{1 - p, p}
	}

	high := scores[0]
	for _, s := range scores[1:] {
		high = max(high, s)
	}

	var sum float64
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp(s - high)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
