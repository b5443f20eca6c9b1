package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker"
)

type remoteRequest struct {
	Text string `json:"text"`
}

type remoteResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Remote calls a model server over HTTP. Consecutive failures open a circuit
// breaker so a dead model server fails fast instead of stalling intake.
type Remote struct {
	url     string
	info    Info
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewRemote creates a Remote classifier from cfg.
func NewRemote(cfg *Config, logger *slog.Logger) *Remote {
	threshold := uint32(cfg.BreakerThreshold)

	return &Remote{
		url:    cfg.RemoteURL,
		info:   Info{Name: cfg.RemoteName, Accuracy: cfg.RemoteAccuracy},
		client: &http.Client{Timeout: cfg.TimeoutDuration()},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "classifier",
			Timeout: cfg.BreakerCooldownDuration(),
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					"breaker", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		}),
		logger: logger,
	}
}

func (r *Remote) Info() Info {
	return r.info
}

func (r *Remote) Classify(ctx context.Context, text string) ([]Prediction, error) {
	result, err := r.breaker.Execute(func() (any, error) {
		return r.call(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassifyFailed, err)
	}
	return result.([]Prediction), nil
}

func (r *Remote) call(ctx context.Context, text string) ([]Prediction, error) {
	body, err := json.Marshal(remoteRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned %s", resp.Status)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	return out.Predictions, nil
}
