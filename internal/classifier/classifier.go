// Package classifier turns free-text symptoms into per-condition probabilities.
// Implementations are constructed once at startup and are safe for concurrent use.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
)

// Prediction is one (label, probability) pair emitted by a classifier.
// Label is the raw class identifier; Probability is in [0, 1].
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Info describes the model behind a Classifier.
type Info struct {
	Name     string  `json:"name"`
	Accuracy float64 `json:"accuracy"`
}

// Classifier scores symptom text against every known condition.
// Predictions are returned in the model's class order, not ranked.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Prediction, error)
	Info() Info
}

// New builds the classifier selected by cfg.Backend and wraps it in an LRU
// cache unless cfg.CacheSize is negative.
func New(cfg *Config, logger *slog.Logger) (Classifier, error) {
	logger = logger.With("system", "classifier", "backend", cfg.Backend)

	var (
		c   Classifier
		err error
	)

	switch cfg.Backend {
	case BackendModel:
		c, err = LoadModel(cfg.ModelPath)
	case BackendRemote:
		c = NewRemote(cfg, logger)
	default:
		err = fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	info := c.Info()
	logger.Info("classifier loaded", "model", info.Name, "accuracy", info.Accuracy)

	if cfg.CacheSize < 0 {
		return c, nil
	}
	return NewCached(c, cfg.CacheSize)
}
