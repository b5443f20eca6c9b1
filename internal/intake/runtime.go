package intake

import (
	"log/slog"

	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/internal/classifier"
	"github.com/JaimeStill/sgmr/internal/diagnosis"
	"github.com/JaimeStill/sgmr/internal/notify"
)

// Runtime bundles the dependencies the intake workflow requires. It is
// built once at startup and shared read-only by every request.
type Runtime struct {
	Classifier    classifier.Classifier
	Catalog       *diagnosis.Catalog
	Cases         cases.System
	Composer      *notify.Composer
	Notifier      notify.Notifier
	Reviewer      string
	ReviewBaseURL string
	Logger        *slog.Logger
}
