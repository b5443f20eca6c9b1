package notify

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"
)

// Transport names accepted by Config.Transport.
const (
	TransportSMTP = "smtp"
	TransportLog  = "log"
)

// Attachment formats accepted by Config.AttachmentFormat.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Config holds mail transport and report rendering settings.
type Config struct {
	Transport        string  `toml:"transport"`
	Host             string  `toml:"host"`
	Port             int     `toml:"port"`
	Username         string  `toml:"username"`
	Password         string  `toml:"password"`
	From             string  `toml:"from"`
	TLS              string  `toml:"tls"`
	Timeout          string  `toml:"timeout"`
	FontPath         string  `toml:"font_path"`
	FontSize         float64 `toml:"font_size"`
	Padding          int     `toml:"padding"`
	AttachmentFormat string  `toml:"attachment_format"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Transport string
	Host      string
	Port      string
	Username  string
	Password  string
	From      string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) tlsPolicy() mail.TLSPolicy {
	switch c.TLS {
	case "opportunistic":
		return mail.TLSOpportunistic
	case "none":
		return mail.NoTLS
	}
	return mail.TLSMandatory
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
	if overlay.Transport != "" {
		c.Transport = overlay.Transport
	}
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.From != "" {
		c.From = overlay.From
	}
	if overlay.TLS != "" {
		c.TLS = overlay.TLS
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.FontPath != "" {
		c.FontPath = overlay.FontPath
	}
	if overlay.FontSize != 0 {
		c.FontSize = overlay.FontSize
	}
	if overlay.Padding != 0 {
		c.Padding = overlay.Padding
	}
	if overlay.AttachmentFormat != "" {
		c.AttachmentFormat = overlay.AttachmentFormat
	}
}

func (c *Config) loadDefaults() {
	if c.Transport == "" {
		c.Transport = TransportLog
	}
	if c.Port == 0 {
		c.Port = 587
	}
	if c.TLS == "" {
		c.TLS = "mandatory"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.FontSize == 0 {
		c.FontSize = 28
	}
	if c.Padding == 0 {
		c.Padding = 40
	}
	if c.AttachmentFormat == "" {
		c.AttachmentFormat = FormatPNG
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Transport != "" {
		if v := os.Getenv(env.Transport); v != "" {
			c.Transport = v
		}
	}
	if env.Host != "" {
		if v := os.Getenv(env.Host); v != "" {
			c.Host = v
		}
	}
	if env.Port != "" {
		if v := os.Getenv(env.Port); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				c.Port = port
			}
		}
	}
	if env.Username != "" {
		if v := os.Getenv(env.Username); v != "" {
			c.Username = v
		}
	}
	if env.Password != "" {
		if v := os.Getenv(env.Password); v != "" {
			c.Password = v
		}
	}
	if env.From != "" {
		if v := os.Getenv(env.From); v != "" {
			c.From = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Transport {
	case TransportLog:
	case TransportSMTP:
		if c.Host == "" {
			return fmt.Errorf("host required for smtp transport")
		}
		if c.From == "" {
			return fmt.Errorf("from required for smtp transport")
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}

	switch c.TLS {
	case "mandatory", "opportunistic", "none":
	default:
		return fmt.Errorf("tls must be mandatory, opportunistic, or none")
	}

	switch c.AttachmentFormat {
	case FormatPNG, FormatPDF:
	default:
		return fmt.Errorf("attachment_format must be png or pdf")
	}

	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("font_size must be positive")
	}
	return nil
}
