// Command migrate provisions the records table used by the postgres case
// store.
//
//	migrate [-dsn URL] up|down|version|steps N|force V
//
// Without -dsn the URL comes from SGMR_DB_DSN, then from the SGMR_DB_*
// variables over the local development defaults.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/JaimeStill/sgmr/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "SGMR_DB_DSN"

func main() {
	dsn := flag.String("dsn", "", "postgres:// connection URL")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [-dsn URL] up|down|version|steps N|force V")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(*dsn, flag.Args(), logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(dsn string, args []string, logger *slog.Logger) error {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing command")
	}

	if dsn == "" {
		dsn = os.Getenv(envDSN)
	}
	if dsn == "" {
		var err error
		if dsn, err = configDSN(); err != nil {
			return err
		}
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer m.Close()

	switch cmd := args[0]; cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil {
			return verr
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
		return nil
	case "steps", "force":
		if len(args) < 2 {
			return fmt.Errorf("%s needs a number", cmd)
		}
		n, perr := strconv.Atoi(args[1])
		if perr != nil {
			return fmt.Errorf("%s: %w", cmd, perr)
		}
		if cmd == "steps" {
			err = m.Steps(n)
		} else {
			err = m.Force(n)
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("migration applied", "command", args[0])
	return nil
}

func configDSN() (string, error) {
	cfg := &config.Config{}
	cfg.Database.Name = "sgmr"
	cfg.Database.User = "sgmr"
	cfg.Database.Password = "sgmr"
	if err := cfg.FinalizeDatabase(); err != nil {
		return "", fmt.Errorf("database config: %w", err)
	}
	return cfg.Database.URL(), nil
}
