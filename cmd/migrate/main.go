// Command migrate manages the PostgreSQL schema for the sponsorship backend.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sponsorship/backend/internal/infrastructure/config"
	"github.com/sponsorship/backend/internal/infrastructure/logger"
	"github.com/sponsorship/backend/internal/infrastructure/migration"
)

const usage = `Usage: migrate [flags] <command> [arguments]

Commands:
  up              apply every pending migration
  down            roll back every applied migration
  step <n>        apply n migrations, negative n rolls back
  version         print the current schema version
  force <v>       overwrite the schema version to clear a dirty state
  create <name>   write an empty up/down migration pair
  list            list the migration pairs found on disk

Flags:
  -path       migrations directory (default "migrations")
  -log-level  debug, info, warn or error (default "info")

The database connection comes from the same DB_* environment variables the
server reads.`

func main() {
	var (
		path     string
		logLevel string
	)
	flag.StringVar(&path, "path", "migrations", "migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	log, err := logger.New(config.LogConfig{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(args, path, log); err != nil {
		log.Fatal("migration command failed", zap.Error(err))
	}
}

func run(args []string, path string, log *zap.Logger) error {
	command := args[0]

	// create and list work on the files alone, no database needed.
	switch command {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate create <name>")
		}
		upPath, downPath, err := migration.CreateMigration(path, args[1])
		if err != nil {
			return err
		}
		log.Info("migration pair created",
			zap.String("up", upPath),
			zap.String("down", downPath),
		)
		return nil

	case "list":
		names, err := migration.ListMigrations(path)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			log.Info("no migrations found", zap.String("path", path))
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, path, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		return m.Steps(n)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("no migrations applied yet")
		} else {
			log.Info("current schema version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}
		return nil

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return m.Force(version)

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
