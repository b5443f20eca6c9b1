// Package cases persists patient submissions and doctor reviews in the
// append-only record store.
package cases

import (
	"context"

	"github.com/JaimeStill/sgmr/internal/diagnosis"
)

// System defines the public contract for case operations.
type System interface {
	// Create persists report under a freshly generated id.
	Create(ctx context.Context, report *diagnosis.Report, patientEmail string) (*Case, error)
	// Find returns the case with id, including its review when one exists.
	// Malformed ids are reported as ErrNotFound.
	Find(ctx context.Context, id string) (*Case, error)
	// RecordReview stores the first review for a case. Later calls return
	// ErrAlreadyReviewed and leave the first review in place.
	RecordReview(ctx context.Context, id string, review Review) error
}
