package classifier_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/sgmr/internal/classifier"
)

const threeClassModel = `{
	"name": "test-model",
	"accuracy": 0.9125,
	"classes": ["flu", "cold", "allergy"],
	"vocabulary": {"fever": 0, "sneezing": 1, "itchy": 2, "cough": 3},
	"idf": [1.5, 1.2, 2.0, 1.0],
	"coef": [
		[3.0, 0.0, -1.0, 1.0],
		[0.5, 2.0, -0.5, 1.0],
		[-1.0, 1.0, 3.0, -0.5]
	],
	"intercept": [0.1, 0.0, -0.1]
}`

func loadModel(t *testing.T, body string) *classifier.Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := classifier.LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	return m
}

func TestModelInfo(t *testing.T) {
	m := loadModel(t, threeClassModel)
	info := m.Info()

	if info.Name != "test-model" {
		t.Errorf("name: got %s, want test-model", info.Name)
	}
	if info.Accuracy != 0.9125 {
		t.Errorf("accuracy: got %v, want 0.9125", info.Accuracy)
	}
}

func TestModelClassify(t *testing.T) {
	m := loadModel(t, threeClassModel)

	tests := []struct {
		text string
		want string
	}{
		{"High FEVER and a dry cough", "flu"},
		{"sneezing, sneezing and more sneezing", "cold"},
		{"itchy eyes all spring", "allergy"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			preds, err := m.Classify(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if len(preds) != 3 {
				t.Fatalf("got %d predictions, want 3", len(preds))
			}

			var sum float64
			best := preds[0]
			for _, p := range preds {
				if p.Probability < 0 || p.Probability > 1 {
					t.Errorf("probability out of range: %+v", p)
				}
				sum += p.Probability
				if p.Probability > best.Probability {
					best = p
				}
			}

			if math.Abs(sum-1) > 1e-9 {
				t.Errorf("probabilities sum to %v, want 1", sum)
			}
			if best.Label != tt.want {
				t.Errorf("top label: got %s, want %s (%+v)", best.Label, tt.want, preds)
			}
		})
	}
}

func TestModelClassifyPreservesClassOrder(t *testing.T) {
	m := loadModel(t, threeClassModel)
	preds, err := m.Classify(context.Background(), "itchy")
	if err != nil {
		t.Fatal(err)
	}

	for i, want := range []string{"flu", "cold", "allergy"} {
		if preds[i].Label != want {
			t.Errorf("preds[%d] = %s, want %s", i, preds[i].Label, want)
		}
	}
}

func TestModelUnknownTokensUseIntercept(t *testing.T) {
	m := loadModel(t, threeClassModel)
	preds, err := m.Classify(context.Background(), "zzz a")
	if err != nil {
		t.Fatal(err)
	}

	e0, e1, e2 := math.Exp(0.1), math.Exp(0.0), math.Exp(-0.1)
	want := e0 / (e0 + e1 + e2)
	if math.Abs(preds[0].Probability-want) > 1e-9 {
		t.Errorf("flu probability = %v, want %v", preds[0].Probability, want)
	}
}

func TestModelBinary(t *testing.T) {
	m := loadModel(t, `{
		"classes": ["negative", "positive"],
		"vocabulary": {"rash": 0},
		"idf": [1.0],
		"coef": [[4.0]],
		"intercept": [0.0]
	}`)

	preds, err := m.Classify(context.Background(), "rash")
	if err != nil {
		t.Fatal(err)
	}

	want := 1 / (1 + math.Exp(-4.0))
	if math.Abs(preds[1].Probability-want) > 1e-9 {
		t.Errorf("positive probability = %v, want %v", preds[1].Probability, want)
	}
	if m.Info().Name != "linear-tfidf" {
		t.Errorf("default name: got %s", m.Info().Name)
	}
}

func TestModelCancelledContext(t *testing.T) {
	m := loadModel(t, threeClassModel)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Classify(ctx, "fever")
	if !errors.Is(err, classifier.ErrClassifyFailed) {
		t.Errorf("got %v, want ErrClassifyFailed", err)
	}
}

func TestParseModelInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"one class", `{"classes":["a"],"idf":[1],"coef":[[1]],"intercept":[0]}`},
		{"row mismatch", `{"classes":["a","b","c"],"idf":[1],"coef":[[1],[1]],"intercept":[0,0]}`},
		{"feature mismatch", `{"classes":["a","b"],"idf":[1,2],"coef":[[1]],"intercept":[0]}`},
		{"vocabulary out of range", `{"classes":["a","b"],"vocabulary":{"x":3},"idf":[1],"coef":[[1]],"intercept":[0]}`},
		{"accuracy out of range", `{"accuracy":97,"classes":["a","b"],"idf":[1],"coef":[[1]],"intercept":[0]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := classifier.ParseModel([]byte(tt.body)); !errors.Is(err, classifier.ErrInvalidModel) {
				t.Errorf("got %v, want ErrInvalidModel", err)
			}
		})
	}
}
