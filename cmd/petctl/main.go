// Package main provides the petctl CLI for deployment and operations tasks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/easeaico/project-pet/internal/config"
	"github.com/easeaico/project-pet/internal/storage"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		migrateCmd(os.Args[2:])
	case "schema":
		schemaCmd(os.Args[2:])
	case "validate":
		validateCmd()
	case "version":
		fmt.Printf("project-pet petctl v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`petctl - Deployment and operations CLI for project-pet

Usage:
  petctl <command> [flags]

Commands:
  migrate     Create or update the pets and wallets tables
  schema      Execute SQL migration files from migrations/ directory (postgres)
  validate    Validate environment configuration
  version     Show version information
  help        Show this help message

Examples:
  petctl migrate              # Migrate the backend selected by STORE_MODE
  petctl migrate --dry-run    # Show what would be migrated
  petctl schema               # Execute all SQL files in migrations/
  petctl schema --file 001_init.sql  # Execute a specific migration file
  petctl validate             # Check if all required env vars are set`)
}

// migrateCmd handles the migrate command.
func migrateCmd(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Show what would be migrated without executing")
	_ = fs.Parse(args)

	cfg := loadConfigForCtl()

	if *dryRun {
		fmt.Println("Dry run mode - no changes will be made")
		fmt.Printf("  - Would migrate %s tables (pets, wallets)\n", cfg.StoreMode)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StoreMode {
	case storage.ModePostgres:
		fmt.Println("Migrating postgres tables...")
		db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer closeDB(db)
		if err := storage.AutoMigrate(ctx, db); err != nil {
			log.Fatalf("failed to migrate app tables: %v", err)
		}
	case storage.ModeSQLite:
		fmt.Printf("Migrating sqlite database %s...\n", cfg.SQLitePath)
		// Opening the database ensures its schema.
		lite, err := storage.OpenSQLite(ctx, cfg.SQLitePath, cfg.StartingTokens)
		if err != nil {
			log.Fatalf("failed to migrate sqlite: %v", err)
		}
		_ = lite.Close()
	default:
		fmt.Printf("Store mode %q keeps no tables, nothing to migrate\n", cfg.StoreMode)
		return
	}
	fmt.Println("  ✓ Application tables migrated")
	fmt.Println("\nMigration completed successfully!")
}

// schemaCmd handles the schema command for executing SQL files.
func schemaCmd(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	file := fs.String("file", "", "Specific migration file to execute")
	dir := fs.String("dir", "migrations", "Directory containing migration files")
	dryRun := fs.Bool("dry-run", false, "Show what would be executed without executing")
	_ = fs.Parse(args)

	cfg := loadConfigForCtl()
	if cfg.StoreMode != storage.ModePostgres {
		log.Fatalf("schema requires STORE_MODE=postgres, got %q", cfg.StoreMode)
	}

	files, err := findMigrationFiles(*dir, *file)
	if err != nil {
		log.Fatalf("failed to find migration files: %v", err)
	}
	if len(files) == 0 {
		fmt.Println("No migration files found")
		return
	}

	if *dryRun {
		fmt.Println("Dry run mode - no changes will be made")
		for _, f := range files {
			fmt.Printf("  - Would execute: %s\n", filepath.Base(f))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer closeDB(db)

	for _, f := range files {
		fmt.Printf("Executing %s...\n", filepath.Base(f))
		if err := executeSQLFile(ctx, db, f); err != nil {
			log.Fatalf("failed to execute %s: %v", filepath.Base(f), err)
		}
		fmt.Printf("  ✓ %s executed\n", filepath.Base(f))
	}

	fmt.Println("\nSchema migration completed successfully!")
}

// validateCmd checks the environment the server would start with.
func validateCmd() {
	fmt.Println("Validating configuration...")

	checks := []struct {
		name string
		mask func(string) string
	}{
		{name: "STORE_MODE"},
		{name: "DATABASE_URL", mask: maskDatabaseURL},
		{name: "SQLITE_PATH"},
		{name: "NARRATIVE_PROVIDER"},
		{name: "NARRATIVE_MODEL"},
		{name: "GOOGLE_API_KEY", mask: maskValue},
		{name: "XAI_API_KEY", mask: maskValue},
		{name: "OPENROUTER_API_KEY", mask: maskValue},
		{name: "OTEL_ENDPOINT"},
	}
	for _, c := range checks {
		value := os.Getenv(c.name)
		if value == "" {
			fmt.Printf("  - %s: (default)\n", c.name)
			continue
		}
		if c.mask != nil {
			value = c.mask(value)
		}
		fmt.Printf("  ✓ %s: %s\n", c.name, value)
	}

	cfg, err := config.Parse()
	if err != nil {
		fmt.Printf("\n  ✗ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n  ✓ store=%s narrator=%s\n", cfg.StoreMode, describeNarrator(cfg))

	if cfg.StoreMode == storage.ModePostgres {
		fmt.Println("\nTesting database connection...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("  ✗ Database connection failed: %v\n", err)
			os.Exit(1)
		}
		closeDB(db)
		fmt.Println("  ✓ Database connection successful")
	}

	fmt.Println("\nConfiguration is valid!")
}

func describeNarrator(cfg config.Config) string {
	if cfg.NarrativeProvider == config.ProviderStatic {
		return config.ProviderStatic
	}
	return cfg.NarrativeProvider + "/" + cfg.NarrativeModel
}

func loadConfigForCtl() config.Config {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return cfg
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("failed to close database connection: %v", err)
	}
}

func findMigrationFiles(dir, specificFile string) ([]string, error) {
	if specificFile != "" {
		fullPath := filepath.Join(dir, specificFile)
		if _, err := os.Stat(fullPath); err != nil {
			return nil, fmt.Errorf("migration file not found: %s", fullPath)
		}
		return []string{fullPath}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func executeSQLFile(ctx context.Context, db *gorm.DB, filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := db.WithContext(ctx).Exec(string(content)).Error; err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}
