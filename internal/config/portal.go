package config

import (
	"fmt"
	"net/url"
	"os"
)

// CatalogConfig locates the disease name and severity mappings.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// Finalize applies defaults and environment variable overrides.
func (c *CatalogConfig) Finalize() error {
	if c.Path == "" {
		c.Path = "catalog.yaml"
	}
	if v := os.Getenv("SGMR_CATALOG_PATH"); v != "" {
		c.Path = v
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *CatalogConfig) Merge(overlay *CatalogConfig) {
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}

// PortalConfig addresses the doctor review portal: where new-case notices
// are sent and the public URL their review links point at.
type PortalConfig struct {
	Reviewer      string `toml:"reviewer"`
	ReviewBaseURL string `toml:"review_base_url"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PortalConfig) Finalize() error {
	if c.Reviewer == "" {
		c.Reviewer = "reviewer@localhost"
	}
	if c.ReviewBaseURL == "" {
		c.ReviewBaseURL = "http://localhost:8080/portal"
	}
	if v := os.Getenv("SGMR_PORTAL_REVIEWER"); v != "" {
		c.Reviewer = v
	}
	if v := os.Getenv("SGMR_PORTAL_REVIEW_BASE_URL"); v != "" {
		c.ReviewBaseURL = v
	}

	u, err := url.Parse(c.ReviewBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("review_base_url must be an absolute URL: %q", c.ReviewBaseURL)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *PortalConfig) Merge(overlay *PortalConfig) {
	if overlay.Reviewer != "" {
		c.Reviewer = overlay.Reviewer
	}
	if overlay.ReviewBaseURL != "" {
		c.ReviewBaseURL = overlay.ReviewBaseURL
	}
}
