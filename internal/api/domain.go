package api

import (
	"fmt"
	"time"

	"github.com/JaimeStill/sgmr/internal/cases"
	"github.com/JaimeStill/sgmr/internal/classifier"
	"github.com/JaimeStill/sgmr/internal/config"
	"github.com/JaimeStill/sgmr/internal/diagnosis"
	"github.com/JaimeStill/sgmr/internal/infrastructure"
	"github.com/JaimeStill/sgmr/internal/intake"
	"github.com/JaimeStill/sgmr/internal/notify"
	"github.com/JaimeStill/sgmr/internal/review"
)

// Domain holds the immutable context shared by the API and the pages:
// the case store and the runtimes of both workflows.
type Domain struct {
	Cases  cases.System
	Intake *intake.Runtime
	Review *review.Runtime
}

// NewDomain loads the classifier and catalog and assembles both workflows.
// It is called once at startup.
func NewDomain(cfg *config.Config, infra *infrastructure.Infrastructure) (*Domain, error) {
	logger := infra.Logger

	clf, err := classifier.New(&cfg.Classifier, logger)
	if err != nil {
		return nil, fmt.Errorf("classifier init failed: %w", err)
	}

	catalog, err := diagnosis.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog load failed: %w", err)
	}

	notifier, err := notify.New(&cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("notifier init failed: %w", err)
	}

	composer, err := notify.NewComposer(&cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("composer init failed: %w", err)
	}

	casesSystem := cases.New(infra.Storage, logger, nil)

	info := clf.Info()
	logger.Info(
		"domain initialized",
		"classifier", info.Name,
		"accuracy", info.Accuracy,
		"catalog_entries", catalog.Len(),
		"mail_transport", cfg.Mail.Transport,
	)

	return &Domain{
		Cases: casesSystem,
		Intake: &intake.Runtime{
			Classifier:    clf,
			Catalog:       catalog,
			Cases:         casesSystem,
			Composer:      composer,
			Notifier:      notifier,
			Reviewer:      cfg.Portal.Reviewer,
			ReviewBaseURL: cfg.Portal.ReviewBaseURL,
			Logger:        logger.With("system", "intake"),
		},
		Review: &review.Runtime{
			Cases:    casesSystem,
			Notifier: notifier,
			Logger:   logger.With("system", "review"),
			Now:      time.Now,
		},
	}, nil
}
