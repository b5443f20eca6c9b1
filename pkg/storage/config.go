package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Config selects a storage backend and carries per-backend settings.
type Config struct {
	Backend string       `toml:"backend"`
	File    FileConfig   `toml:"file"`
	SQLite  SQLiteConfig `toml:"sqlite"`
	Redis   RedisConfig  `toml:"redis"`
	Azure   AzureConfig  `toml:"azure"`
}

// FileConfig places one file per record beneath Dir.
type FileConfig struct {
	Dir string `toml:"dir"`
}

// SQLiteConfig points at an embedded database file.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// RedisConfig holds connection parameters for a Redis server.
// Prefix namespaces every key.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// AzureConfig holds Azure Blob Storage parameters. ConnectionString takes
// precedence; otherwise ServiceURL is used with the default Azure credential chain.
type AzureConfig struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend          string
	FileDir          string
	SQLitePath       string
	RedisAddr        string
	RedisPassword    string
	RedisDB          string
	RedisPrefix      string
	ContainerName    string
	ConnectionString string
	ServiceURL       string
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
	if overlay.File.Dir != "" {
		c.File.Dir = overlay.File.Dir
	}
	if overlay.SQLite.Path != "" {
		c.SQLite.Path = overlay.SQLite.Path
	}
	if overlay.Redis.Addr != "" {
		c.Redis.Addr = overlay.Redis.Addr
	}
	if overlay.Redis.Password != "" {
		c.Redis.Password = overlay.Redis.Password
	}
	if overlay.Redis.DB != 0 {
		c.Redis.DB = overlay.Redis.DB
	}
	if overlay.Redis.Prefix != "" {
		c.Redis.Prefix = overlay.Redis.Prefix
	}
	if overlay.Azure.ContainerName != "" {
		c.Azure.ContainerName = overlay.Azure.ContainerName
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.ServiceURL != "" {
		c.Azure.ServiceURL = overlay.Azure.ServiceURL
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.File.Dir == "" {
		c.File.Dir = "cases"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "data/sgmr.db"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "sgmr:"
	}
	if c.Azure.ContainerName == "" {
		c.Azure.ContainerName = "cases"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Backend, &c.Backend)
	set(env.FileDir, &c.File.Dir)
	set(env.SQLitePath, &c.SQLite.Path)
	set(env.RedisAddr, &c.Redis.Addr)
	set(env.RedisPassword, &c.Redis.Password)
	set(env.RedisPrefix, &c.Redis.Prefix)
	set(env.ContainerName, &c.Azure.ContainerName)
	set(env.ConnectionString, &c.Azure.ConnectionString)
	set(env.ServiceURL, &c.Azure.ServiceURL)

	if env.RedisDB != "" {
		if v := os.Getenv(env.RedisDB); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Redis.DB = n
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFile:
		if c.File.Dir == "" {
			return fmt.Errorf("file.dir required")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path required")
		}
	case BackendPostgres:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr required")
		}
	case BackendAzure:
		if c.Azure.ContainerName == "" {
			return fmt.Errorf("azure.container_name required")
		}
		if c.Azure.ConnectionString == "" && c.Azure.ServiceURL == "" {
			return fmt.Errorf("azure.connection_string or azure.service_url required")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
