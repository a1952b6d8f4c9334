package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/easeaico/project-pet/internal/types"
)

const queryTimeout = 3 * time.Second

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS pets (
    user_id       TEXT PRIMARY KEY,
    state         TEXT,
    pity_counter  INTEGER NOT NULL DEFAULT 0,
    fragments     INTEGER NOT NULL DEFAULT 0,
    created_at_ms INTEGER NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS wallets (
    user_id       TEXT PRIMARY KEY,
    tokens        INTEGER NOT NULL DEFAULT 0,
    created_at_ms INTEGER NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
}

// SQLiteStore keeps pets and wallets in a single local database file.
type SQLiteStore struct {
	db             *sql.DB
	startingTokens int
}

// OpenSQLite opens (and if needed creates) the database at dbPath.
// ":memory:" is accepted for tests.
func OpenSQLite(ctx context.Context, dbPath string, startingTokens int) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ensure sqlite schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, startingTokens: startingTokens}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the stored row, or nil when the user has none.
func (s *SQLiteStore) Load(ctx context.Context, userID string) (*types.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		state     sql.NullString
		pity      int
		fragments int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state, pity_counter, fragments FROM pets WHERE user_id = ?`, userID,
	).Scan(&state, &pity, &fragments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet by user: %w", err)
	}

	return &types.Row{
		UserID:      userID,
		Pet:         types.HydratePet([]byte(state.String)),
		PityCounter: max(pity, 0),
		Fragments:   max(fragments, 0),
	}, nil
}

// Save upserts only the columns present in patch.
func (s *SQLiteStore) Save(ctx context.Context, userID string, patch types.Patch) error {
	if patch.Empty() {
		return nil
	}

	var (
		state     sql.NullString
		pity      int
		fragments int
		updates   = []string{"updated_at_ms = excluded.updated_at_ms"}
	)
	if patch.Pet != nil {
		raw, err := marshalJSON(patch.Pet)
		if err != nil {
			return fmt.Errorf("failed to encode pet state: %w", err)
		}
		state = sql.NullString{String: string(raw), Valid: true}
		updates = append(updates, "state = excluded.state")
	}
	if patch.PityCounter != nil {
		pity = *patch.PityCounter
		updates = append(updates, "pity_counter = excluded.pity_counter")
	}
	if patch.Fragments != nil {
		fragments = *patch.Fragments
		updates = append(updates, "fragments = excluded.fragments")
	}

	nowMs := time.Now().UTC().UnixMilli()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO pets (user_id, state, pity_counter, fragments, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET `+strings.Join(updates, ", "),
		userID, state, pity, fragments, nowMs, nowMs)
	if err != nil {
		return fmt.Errorf("failed to upsert pet: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ensureWallet(ctx context.Context, userID string) error {
	nowMs := time.Now().UTC().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO wallets (user_id, tokens, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id) DO NOTHING`, userID, s.startingTokens, nowMs, nowMs)
	if err != nil {
		return fmt.Errorf("failed to ensure wallet: %w", err)
	}
	return nil
}

// Balance returns the user's token balance.
func (s *SQLiteStore) Balance(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := s.ensureWallet(ctx, userID); err != nil {
		return 0, err
	}
	var tokens int
	if err := s.db.QueryRowContext(ctx, `SELECT tokens FROM wallets WHERE user_id = ?`, userID).Scan(&tokens); err != nil {
		return 0, fmt.Errorf("failed to read wallet: %w", err)
	}
	return tokens, nil
}

// Deduct debits amount if the balance covers it. It returns false, with
// no change, when funds are insufficient.
func (s *SQLiteStore) Deduct(ctx context.Context, userID string, amount int) (bool, error) {
	if amount < 0 {
		return false, types.InvalidOperation("negative debit")
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := s.ensureWallet(ctx, userID); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE wallets SET tokens = tokens - ?, updated_at_ms = ?
WHERE user_id = ? AND tokens >= ?`, amount, time.Now().UTC().UnixMilli(), userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to debit wallet: %w", err)
	}
	return affected == 1, nil
}

// Credit adds amount to the user's balance.
func (s *SQLiteStore) Credit(ctx context.Context, userID string, amount int) error {
	if amount < 0 {
		return types.InvalidOperation("negative credit")
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := s.ensureWallet(ctx, userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
UPDATE wallets SET tokens = tokens + ?, updated_at_ms = ?
WHERE user_id = ?`, amount, time.Now().UTC().UnixMilli(), userID)
	if err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	return nil
}
