package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/project-pet/internal/companion"
	"github.com/easeaico/project-pet/internal/types"
)

// petModel maps to the pets table. One row per user.
type petModel struct {
	UserID string `gorm:"primaryKey;size:64"`
	// State is the pet record blob, hydrated field by field on load.
	State       json.RawMessage `gorm:"type:jsonb"`
	PityCounter int             `gorm:"not null;default:0"`
	Fragments   int             `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (petModel) TableName() string {
	return "pets"
}

// walletModel maps to the wallets table holding token balances.
type walletModel struct {
	UserID    string `gorm:"primaryKey;size:64"`
	Tokens    int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (walletModel) TableName() string {
	return "wallets"
}

// AutoMigrate creates or updates the application tables.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&petModel{}, &walletModel{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

type petRepo struct {
	db *gorm.DB
}

// NewPetRepo returns a gorm-backed PetRepo.
func NewPetRepo(db *gorm.DB) companion.PetRepo {
	return &petRepo{db: db}
}

func (r *petRepo) Load(ctx context.Context, userID string) (*types.Row, error) {
	var model petModel
	err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet by user: %w", err)
	}
	return rowFromModel(model), nil
}

func (r *petRepo) Save(ctx context.Context, userID string, patch types.Patch) error {
	if patch.Empty() {
		return nil
	}
	record := petModel{UserID: userID}
	columns := []string{"updated_at"}

	if patch.Pet != nil {
		state, err := marshalJSON(patch.Pet)
		if err != nil {
			return fmt.Errorf("failed to encode pet state: %w", err)
		}
		record.State = state
		columns = append(columns, "state")
	}
	if patch.PityCounter != nil {
		record.PityCounter = *patch.PityCounter
		columns = append(columns, "pity_counter")
	}
	if patch.Fragments != nil {
		record.Fragments = *patch.Fragments
		columns = append(columns, "fragments")
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert pet: %w", err)
	}
	return nil
}

func rowFromModel(model petModel) *types.Row {
	return &types.Row{
		UserID:      model.UserID,
		Pet:         types.HydratePet(model.State),
		PityCounter: max(model.PityCounter, 0),
		Fragments:   max(model.Fragments, 0),
	}
}

type walletRepo struct {
	db             *gorm.DB
	startingTokens int
}

// NewWalletRepo returns a gorm-backed Ledger. New users start with
// startingTokens.
func NewWalletRepo(db *gorm.DB, startingTokens int) companion.Ledger {
	return &walletRepo{db: db, startingTokens: startingTokens}
}

func (r *walletRepo) ensure(ctx context.Context, userID string) (walletModel, error) {
	var wallet walletModel
	err := r.db.WithContext(ctx).
		Where(walletModel{UserID: userID}).
		Attrs(walletModel{Tokens: r.startingTokens}).
		FirstOrCreate(&wallet).Error
	if err != nil {
		return walletModel{}, fmt.Errorf("failed to load wallet: %w", err)
	}
	return wallet, nil
}

func (r *walletRepo) Balance(ctx context.Context, userID string) (int, error) {
	wallet, err := r.ensure(ctx, userID)
	if err != nil {
		return 0, err
	}
	return wallet.Tokens, nil
}

func (r *walletRepo) Deduct(ctx context.Context, userID string, amount int) (bool, error) {
	if amount < 0 {
		return false, types.InvalidOperation("negative debit")
	}
	if _, err := r.ensure(ctx, userID); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Model(&walletModel{}).
		Where("user_id = ? AND tokens >= ?", userID, amount).
		Updates(map[string]any{
			"tokens":     gorm.Expr("tokens - ?", amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to debit wallet: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *walletRepo) Credit(ctx context.Context, userID string, amount int) error {
	if amount < 0 {
		return types.InvalidOperation("negative credit")
	}
	if _, err := r.ensure(ctx, userID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Model(&walletModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"tokens":     gorm.Expr("tokens + ?", amount),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	return nil
}

func marshalJSON(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
