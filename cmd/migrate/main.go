// Command migrate manages the catalog database schema.
//
// Usage:
//
//	migrate [-path DIR] up
//	migrate [-path DIR] down
//	migrate [-path DIR] steps N
//	migrate [-path DIR] status
//	migrate [-path DIR] force VERSION
//
// Database settings come from the same configuration sources as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/libraria/catalog-service/internal/config"
	"github.com/libraria/catalog-service/internal/database"
	"github.com/libraria/catalog-service/internal/observability"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("migrate", flag.ExitOnError)
	pathOverride := flags.String("path", "", "override the migrations directory")
	flags.Usage = usage(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	command := flags.Arg(0)
	if command == "" {
		flags.Usage()
		return fmt.Errorf("a command is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}).With().Str("component", "migrate").Logger()

	migrationDir := cfg.Database.MigrationPath
	if *pathOverride != "" {
		migrationDir = *pathOverride
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db, migrationDir, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close migrator")
		}
	}()

	switch command {
	case "up":
		return migrator.Up()

	case "down":
		return migrator.Down()

	case "steps":
		n, err := intArg(flags.Arg(1), "steps")
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("steps requires a non-zero count")
		}
		return migrator.Steps(n)

	case "status":
		return reportStatus(migrator, logger)

	case "force":
		version, err := intArg(flags.Arg(1), "force")
		if err != nil {
			return err
		}
		if err := migrator.Force(version); err != nil {
			return err
		}
		return reportStatus(migrator, logger)

	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func reportStatus(migrator *database.Migrator, logger zerolog.Logger) error {
	status, err := migrator.Status()
	if err != nil {
		return err
	}
	logger.Info().
		Uint("version", status.Version).
		Bool("dirty", status.Dirty).
		Msg("schema status")
	return nil
}

// intArg parses the numeric argument a command requires.
func intArg(raw, command string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s requires a numeric argument", command)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s argument must be an integer, got %q", command, raw)
	}
	return n, nil
}

func usage(flags *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-path DIR] <up|down|steps N|status|force VERSION>")
		flags.PrintDefaults()
	}
}
