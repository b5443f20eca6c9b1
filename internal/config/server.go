package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds HTTP listener settings. Durations are kept as strings
// so TOML and environment values share one parse path.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

var serverDurations = []struct {
	env, key string
	field    func(*ServerConfig) *string
	fallback string
}{
	{"SGMR_SERVER_READ_TIMEOUT", "read_timeout", func(c *ServerConfig) *string { return &c.ReadTimeout }, "30s"},
	{"SGMR_SERVER_READ_HEADER_TIMEOUT", "read_header_timeout", func(c *ServerConfig) *string { return &c.ReadHeaderTimeout }, "10s"},
	{"SGMR_SERVER_WRITE_TIMEOUT", "write_timeout", func(c *ServerConfig) *string { return &c.WriteTimeout }, "2m"},
	{"SGMR_SERVER_SHUTDOWN_TIMEOUT", "shutdown_timeout", func(c *ServerConfig) *string { return &c.ShutdownTimeout }, "30s"},
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration       { return duration(c.ReadTimeout) }
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration { return duration(c.ReadHeaderTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration   { return duration(c.ShutdownTimeout) }

// WriteTimeoutDuration bounds a whole request, including classification and
// a synchronous mail delivery.
func (c *ServerConfig) WriteTimeoutDuration() time.Duration { return duration(c.WriteTimeout) }

// Finalize applies defaults, SGMR_SERVER_* overrides, and validation.
func (c *ServerConfig) Finalize() error {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if v := os.Getenv("SGMR_SERVER_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("SGMR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	for _, d := range serverDurations {
		field := d.field(c)
		if *field == "" {
			*field = d.fallback
		}
		if v := os.Getenv(d.env); v != "" {
			*field = v
		}
		if _, err := time.ParseDuration(*field); err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, d := range serverDurations {
		if v := *d.field(overlay); v != "" {
			*d.field(c) = v
		}
	}
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
