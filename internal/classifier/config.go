package classifier

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Backend names accepted by Config.Backend.
const (
	BackendModel  = "model"
	BackendRemote = "remote"
)

// Config selects and tunes the classifier.
type Config struct {
	Backend          string  `toml:"backend"`
	ModelPath        string  `toml:"model_path"`
	RemoteURL        string  `toml:"remote_url"`
	RemoteName       string  `toml:"remote_name"`
	RemoteAccuracy   float64 `toml:"remote_accuracy"`
	Timeout          string  `toml:"timeout"`
	BreakerThreshold int     `toml:"breaker_threshold"`
	BreakerCooldown  string  `toml:"breaker_cooldown"`
	CacheSize        int     `toml:"cache_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend   string
	ModelPath string
	RemoteURL string
	Timeout   string
	CacheSize string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// BreakerCooldownDuration returns BreakerCooldown as a time.Duration.
func (c *Config) BreakerCooldownDuration() time.Duration {
	d, _ := time.ParseDuration(c.BreakerCooldown)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.ModelPath != "" {
		c.ModelPath = overlay.ModelPath
	}
	if overlay.RemoteURL != "" {
		c.RemoteURL = overlay.RemoteURL
	}
	if overlay.RemoteName != "" {
		c.RemoteName = overlay.RemoteName
	}
	if overlay.RemoteAccuracy != 0 {
		c.RemoteAccuracy = overlay.RemoteAccuracy
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.BreakerThreshold != 0 {
		c.BreakerThreshold = overlay.BreakerThreshold
	}
	if overlay.BreakerCooldown != "" {
		c.BreakerCooldown = overlay.BreakerCooldown
	}
	if overlay.CacheSize != 0 {
		c.CacheSize = overlay.CacheSize
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendModel
	}
	if c.ModelPath == "" {
		c.ModelPath = "models/disease_model.json"
	}
	if c.RemoteName == "" {
		c.RemoteName = "remote"
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.BreakerThreshold == 0 {
		c.BreakerThreshold = 5
	}
	if c.BreakerCooldown == "" {
		c.BreakerCooldown = "30s"
	}
	if c.CacheSize == 0 {
		c.CacheSize = 256
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = v
		}
	}
	if env.ModelPath != "" {
		if v := os.Getenv(env.ModelPath); v != "" {
			c.ModelPath = v
		}
	}
	if env.RemoteURL != "" {
		if v := os.Getenv(env.RemoteURL); v != "" {
			c.RemoteURL = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.CacheSize != "" {
		if v := os.Getenv(env.CacheSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.CacheSize = n
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendModel:
		if c.ModelPath == "" {
			return fmt.Errorf("model_path required")
		}
	case BackendRemote:
		if c.RemoteURL == "" {
			return fmt.Errorf("remote_url required")
		}
		if c.RemoteAccuracy < 0 || c.RemoteAccuracy > 1 {
			return fmt.Errorf("remote_accuracy must be within [0, 1]")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.BreakerCooldown); err != nil {
		return fmt.Errorf("invalid breaker_cooldown: %w", err)
	}
	if c.BreakerThreshold < 1 {
		return fmt.Errorf("breaker_threshold must be positive")
	}
	return nil
}
