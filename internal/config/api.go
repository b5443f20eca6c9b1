package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/sgmr/pkg/formatting"
	"github.com/JaimeStill/sgmr/pkg/middleware"
	"github.com/JaimeStill/sgmr/pkg/openapi"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SGMR_CORS_ENABLED",
	Origins:          "SGMR_CORS_ORIGINS",
	AllowedMethods:   "SGMR_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SGMR_CORS_ALLOWED_HEADERS",
	AllowCredentials: "SGMR_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SGMR_CORS_MAX_AGE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:           "SGMR_RATE_LIMIT_ENABLED",
	RequestsPerSecond: "SGMR_RATE_LIMIT_RPS",
	Burst:             "SGMR_RATE_LIMIT_BURST",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "SGMR_OPENAPI_TITLE",
	Description: "SGMR_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, request limits, CORS, and OpenAPI metadata.
// RateLimit also throttles submissions on the patient and portal pages.
type APIConfig struct {
	BasePath    string                     `toml:"base_path"`
	MaxBodySize string                     `toml:"max_body_size"`
	CORS        middleware.CORSConfig      `toml:"cors"`
	RateLimit   middleware.RateLimitConfig `toml:"rate_limit"`
	OpenAPI     openapi.Config             `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 1 << 20
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("SGMR_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("SGMR_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	return nil
}
