package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/sgmr/internal/diagnosis"
	"github.com/JaimeStill/sgmr/pkg/metrics"
	"github.com/JaimeStill/sgmr/pkg/storage"
)

// maxAttempts bounds id regeneration when a generated id is already taken.
const maxAttempts = 5

type repo struct {
	store  storage.System
	newID  IDFunc
	now    func() time.Time
	logger *slog.Logger
}

// New creates a case repository over store. A nil newID uses NewID.
func New(store storage.System, logger *slog.Logger, newID IDFunc) System {
	if newID == nil {
		newID = NewID
	}
	return &repo{
		store:  store,
		newID:  newID,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With("system", "cases"),
	}
}

func (r *repo) Create(ctx context.Context, report *diagnosis.Report, patientEmail string) (*Case, error) {
	c := &Case{
		PatientEmail: patientEmail,
		Report:       report,
		ReportText:   report.Text(),
		CreatedAt:    r.now(),
	}

	for range maxAttempts {
		c.ID = r.newID()

		data, err := encodeCase(c)
		if err != nil {
			return nil, fmt.Errorf("encode case: %w", err)
		}

		err = r.store.Create(ctx, caseKey(c.ID), data)
		if errors.Is(err, storage.ErrExists) {
			r.logger.Warn("case id collision, regenerating", "id", c.ID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("persist case: %w", err)
		}

		metrics.CasesCreated.Inc()
		r.logger.Info("case created", "id", c.ID)
		return c, nil
	}

	return nil, ErrIDExhausted
}

func (r *repo) Find(ctx context.Context, id string) (*Case, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}

	data, err := r.store.Get(ctx, caseKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read case: %w", err)
	}

	c, err := decodeCase(id, data)
	if err != nil {
		return nil, err
	}

	review, err := r.findReview(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Review = review

	return c, nil
}

func (r *repo) RecordReview(ctx context.Context, id string, review Review) error {
	if !ValidID(id) {
		return ErrNotFound
	}

	ok, err := r.store.Exists(ctx, caseKey(id))
	if err != nil {
		return fmt.Errorf("check case: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	if review.SentAt.IsZero() {
		review.SentAt = r.now()
	}

	data, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("encode review: %w", err)
	}

	if err := r.store.Create(ctx, reviewKey(id), data); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("persist review: %w", err)
	}

	metrics.ReviewsRecorded.Inc()
	r.logger.Info("review recorded", "id", id, "doctor", review.Doctor)
	return nil
}

func (r *repo) findReview(ctx context.Context, id string) (*Review, error) {
	data, err := r.store.Get(ctx, reviewKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read review: %w", err)
	}

	var review Review
	if err := json.Unmarshal(data, &review); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &review, nil
}
