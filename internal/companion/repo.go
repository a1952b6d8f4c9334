package companion

import (
	"context"

	"github.com/easeaico/project-pet/internal/types"
)

// PetRepo loads and saves the pet row of a user.
type PetRepo interface {
	// Load returns nil when the user has no stored row.
	Load(ctx context.Context, userID string) (*types.Row, error)
	// Save writes only the fields set on patch.
	Save(ctx context.Context, userID string, patch types.Patch) error
}

// Ledger is the token balance of a user.
type Ledger interface {
	// Deduct returns false without changing the balance when funds are short.
	Deduct(ctx context.Context, userID string, amount int) (bool, error)
	Credit(ctx context.Context, userID string, amount int) error
	Balance(ctx context.Context, userID string) (int, error)
}
