// Package storage provides the pet row and token wallet backends.
package storage

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/easeaico/project-pet/internal/companion"
)

const (
	ModeMemory   = "memory"
	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Mode           string
	DatabaseURL    string
	SQLitePath     string
	StartingTokens int
	AutoMigrate    bool
}

// Store holds the selected backend's repositories.
type Store struct {
	Pets    companion.PetRepo
	Wallets companion.Ledger
	mode    string
	db      *gorm.DB
	closeFn func() error
}

// NewStore opens the backend named by opts.Mode.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	switch mode {
	case ModeMemory:
		mem := NewMemoryStore(opts.StartingTokens)
		return &Store{Pets: mem, Wallets: mem, mode: ModeMemory}, nil
	case ModeSQLite, "local":
		lite, err := OpenSQLite(ctx, opts.SQLitePath, opts.StartingTokens)
		if err != nil {
			return nil, err
		}
		return &Store{Pets: lite, Wallets: lite, mode: ModeSQLite, closeFn: lite.Close}, nil
	case ModePostgres, "":
		return openPostgres(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown store mode %q", opts.Mode)
	}
}

// OpenPostgres opens a gorm connection and verifies it with a ping.
func OpenPostgres(ctx context.Context, databaseURL string) (*gorm.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func openPostgres(ctx context.Context, opts Options) (*Store, error) {
	db, err := OpenPostgres(ctx, opts.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if opts.AutoMigrate {
		if err := AutoMigrate(ctx, db); err != nil {
			closeGorm(db)
			return nil, err
		}
	}

	return &Store{
		Pets:    NewPetRepo(db),
		Wallets: NewWalletRepo(db, opts.StartingTokens),
		mode:    ModePostgres,
		db:      db,
		closeFn: func() error {
			closeGorm(db)
			return nil
		},
	}, nil
}

// Mode reports the backend in use.
func (s *Store) Mode() string {
	return s.mode
}

// DB returns the gorm handle for postgres mode, nil otherwise.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Close() {
	if s == nil || s.closeFn == nil {
		return
	}
	_ = s.closeFn()
}

func closeGorm(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
