package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/campus/backend/internal/infrastructure/config"
	"github.com/campus/backend/internal/infrastructure/logger"
	"github.com/campus/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	defaultMigrationsPath = "migrations"
	tenantMigrationsPath  = "internal/infrastructure/migration/tenantsql"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
		timeout        time.Duration
	)

	flag.StringVar(&migrationsPath, "path", "", "Path to global migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Timeout for tenant bootstrap")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	migrationsPath = resolveMigrationsPath(migrationsPath, log)
	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", migrationsPath),
	)

	// Commands that only touch files
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> | migrate create-tenant <name>")
		}
		createMigration(log, migrationsPath, args[1], false)
		return
	case "create-tenant":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create-tenant <name>")
		}
		createMigration(log, tenantMigrationsPath, args[1], true)
		return
	case "list":
		listMigrations(log, migrationsPath)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	if command == "tenant" {
		if len(args) < 2 {
			log.Fatal("Partition required. Usage: migrate tenant <partition> [partition...]")
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		schemas := migration.NewTenantSchema(db, log)
		for _, partition := range args[1:] {
			version, err := schemas.Bootstrap(ctx, partition)
			if err != nil {
				log.Fatal("Tenant bootstrap failed", zap.String("partition", partition), zap.Error(err))
			}
			log.Info("Tenant partition ready", zap.String("partition", partition), zap.Uint("version", version))
		}
		return
	}

	m, err := migration.New(db, migrationsPath, cfg.Database.GlobalSchema, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if !hasConfirm(args[1:]) {
			log.Fatal("Rolling back the global schema drops every institution. Use 'migrate down -confirm'.")
		}
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func resolveMigrationsPath(path string, log *zap.Logger) string {
	if path == "" {
		if _, err := os.Stat(defaultMigrationsPath); err == nil {
			path = defaultMigrationsPath
		} else if execPath, err := os.Executable(); err == nil {
			candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
		if path == "" {
			path = defaultMigrationsPath
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		log.Fatal("Failed to get absolute path", zap.Error(err))
	}
	return abs
}

func createMigration(log *zap.Logger, dir, name string, tenant bool) {
	mf, err := migration.CreateMigration(dir, name, tenant)
	if err != nil {
		log.Fatal("Failed to create migration", zap.Error(err))
	}
	log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.Bool("tenant", tenant),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
}

func listMigrations(log *zap.Logger, dir string) {
	files, err := migration.ListMigrations(dir)
	if err != nil {
		log.Fatal("Failed to list migrations", zap.Error(err))
	}
	if len(files) == 0 {
		log.Info("No migrations found")
		return
	}
	log.Info("Available migrations", zap.Int("count", len(files)))
	for _, f := range files {
		fmt.Printf("  - %06d %s\n", f.Version, f.Name)
	}
}

func hasConfirm(args []string) bool {
	for _, arg := range args {
		if arg == "-confirm" || arg == "--confirm" {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Println(`Campus Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                         Apply pending global migrations
  down -confirm              Roll back all global migrations
  step <n>                   Apply n global migrations (positive=up, negative=down)
  version                    Show the global migration version
  force <version>            Force the global migration version (repairs a dirty state)
  tenant <partition>...      Create tenant partitions and apply tenant migrations
  create <name>              Create a global migration file pair
  create-tenant <name>       Create a tenant migration file pair (embedded in the binary)
  list                       List global migrations

Flags:
  -path string               Path to global migrations directory (default: ./migrations)
  -log-level string          Log level: debug, info, warn, error (default: info)
  -timeout duration          Timeout for tenant bootstrap (default: 5m)

Environment Variables:
  CAMPUS_DATABASE_HOST, CAMPUS_DATABASE_PORT, CAMPUS_DATABASE_USER,
  CAMPUS_DATABASE_PASSWORD, CAMPUS_DATABASE_DBNAME, CAMPUS_DATABASE_GLOBAL_SCHEMA

Examples:
  migrate up
  migrate tenant school_42 school_43
  migrate create-tenant add_guardian_phone`)
}
