// Package config loads the service configuration from config.toml, an
// optional config.<env>.toml overlay, a .env file, and SGMR_ environment
// variables, in that order of precedence (lowest first).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/sgmr/internal/classifier"
	"github.com/JaimeStill/sgmr/internal/notify"
	"github.com/JaimeStill/sgmr/pkg/database"
	"github.com/JaimeStill/sgmr/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvSGMREnv             = "SGMR_ENV"
	EnvSGMRShutdownTimeout = "SGMR_SHUTDOWN_TIMEOUT"
	EnvSGMRVersion         = "SGMR_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "SGMR_DB_HOST",
	Port:            "SGMR_DB_PORT",
	Name:            "SGMR_DB_NAME",
	User:            "SGMR_DB_USER",
	Password:        "SGMR_DB_PASSWORD",
	SSLMode:         "SGMR_DB_SSL_MODE",
	MaxOpenConns:    "SGMR_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SGMR_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SGMR_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SGMR_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:          "SGMR_STORAGE_BACKEND",
	FileDir:          "SGMR_STORAGE_FILE_DIR",
	SQLitePath:       "SGMR_STORAGE_SQLITE_PATH",
	RedisAddr:        "SGMR_STORAGE_REDIS_ADDR",
	RedisPassword:    "SGMR_STORAGE_REDIS_PASSWORD",
	RedisDB:          "SGMR_STORAGE_REDIS_DB",
	RedisPrefix:      "SGMR_STORAGE_REDIS_PREFIX",
	ContainerName:    "SGMR_STORAGE_CONTAINER_NAME",
	ConnectionString: "SGMR_STORAGE_CONNECTION_STRING",
	ServiceURL:       "SGMR_STORAGE_SERVICE_URL",
}

var classifierEnv = &classifier.Env{
	Backend:   "SGMR_CLASSIFIER_BACKEND",
	ModelPath: "SGMR_CLASSIFIER_MODEL_PATH",
	RemoteURL: "SGMR_CLASSIFIER_REMOTE_URL",
	Timeout:   "SGMR_CLASSIFIER_TIMEOUT",
	CacheSize: "SGMR_CLASSIFIER_CACHE_SIZE",
}

var mailEnv = &notify.Env{
	Transport: "SGMR_MAIL_TRANSPORT",
	Host:      "SGMR_MAIL_HOST",
	Port:      "SGMR_MAIL_PORT",
	Username:  "SGMR_MAIL_USERNAME",
	Password:  "SGMR_MAIL_PASSWORD",
	From:      "SGMR_MAIL_FROM",
}

// Config is the root configuration for the SGMR service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	API             APIConfig         `toml:"api"`
	Storage         storage.Config    `toml:"storage"`
	Database        database.Config   `toml:"database"`
	Classifier      classifier.Config `toml:"classifier"`
	Catalog         CatalogConfig     `toml:"catalog"`
	Mail            notify.Config     `toml:"mail"`
	Portal          PortalConfig      `toml:"portal"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the SGMR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSGMREnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// loads .env into the process environment without replacing variables that
// are already set, and finalizes all values.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if _, err := os.Stat(DotEnvFile); err == nil {
		if err := godotenv.Load(DotEnvFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
		}
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Storage.Merge(&overlay.Storage)
	c.Database.Merge(&overlay.Database)
	c.Classifier.Merge(&overlay.Classifier)
	c.Catalog.Merge(&overlay.Catalog)
	c.Mail.Merge(&overlay.Mail)
	c.Portal.Merge(&overlay.Portal)
}

// UsesDatabase reports whether the configured storage backend needs the
// PostgreSQL connection.
func (c *Config) UsesDatabase() bool {
	return c.Storage.Backend == storage.BackendPostgres
}

// FinalizeDatabase finalizes the database section on its own, for tools
// that need a connection regardless of the storage backend.
func (c *Config) FinalizeDatabase() error {
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if c.UsesDatabase() {
		if err := c.FinalizeDatabase(); err != nil {
			return err
		}
	}
	if err := c.Classifier.Finalize(classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Catalog.Finalize(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Mail.Finalize(mailEnv); err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	if err := c.Portal.Finalize(); err != nil {
		return fmt.Errorf("portal: %w", err)
	}

	if budget := c.Classifier.TimeoutDuration() + c.Mail.TimeoutDuration(); c.Server.WriteTimeoutDuration() <= budget {
		return fmt.Errorf("server: write_timeout %s must exceed classifier and mail timeouts (%s)", c.Server.WriteTimeout, budget)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSGMRShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSGMRVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSGMREnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
