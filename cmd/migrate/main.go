package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/punchcard-hq/punchcard-backend/internal/config"
	"github.com/punchcard-hq/punchcard-backend/migrations"
)

func main() {
	steps := flag.Int("steps", 0, "number of migrations to apply (negative rolls back); 0 means all")
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(action, *steps, cfg.DatabaseURL()); err != nil {
		slog.Error("migration failed", "action", action, "error", err)
		os.Exit(1)
	}
	slog.Info("migration completed", "action", action)
}

func run(action string, steps int, dsn string) error {
	m, err := migrations.New(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	switch action {
	case "up":
		if steps != 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps != 0 {
			err = m.Steps(-abs(steps))
		} else {
			err = m.Down()
		}
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			slog.Info("no migration applied")
			return nil
		}
		if err != nil {
			return err
		}
		slog.Info("schema version", "version", version, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
