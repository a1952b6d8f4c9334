package storage

import (
	"context"
	"sync"

	"github.com/easeaico/project-pet/internal/types"
)

type memoryRow struct {
	state     []byte
	pity      int
	fragments int
}

// MemoryStore keeps rows and wallets in process. State is held as JSON so
// loads go through the same hydrate path as the SQL stores.
type MemoryStore struct {
	mu             sync.Mutex
	rows           map[string]memoryRow
	wallets        map[string]int
	startingTokens int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(startingTokens int) *MemoryStore {
	return &MemoryStore{
		rows:           make(map[string]memoryRow),
		wallets:        make(map[string]int),
		startingTokens: startingTokens,
	}
}

func (s *MemoryStore) Load(ctx context.Context, userID string) (*types.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[userID]
	if !ok {
		return nil, nil
	}
	return &types.Row{
		UserID:      userID,
		Pet:         types.HydratePet(row.state),
		PityCounter: row.pity,
		Fragments:   row.fragments,
	}, nil
}

func (s *MemoryStore) Save(ctx context.Context, userID string, patch types.Patch) error {
	var state []byte
	if patch.Pet != nil {
		raw, err := marshalJSON(patch.Pet)
		if err != nil {
			return err
		}
		state = raw
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.rows[userID]
	if patch.Pet != nil {
		row.state = state
	}
	if patch.PityCounter != nil {
		row.pity = *patch.PityCounter
	}
	if patch.Fragments != nil {
		row.fragments = *patch.Fragments
	}
	s.rows[userID] = row
	return nil
}

func (s *MemoryStore) balanceLocked(userID string) int {
	tokens, ok := s.wallets[userID]
	if !ok {
		tokens = s.startingTokens
		s.wallets[userID] = tokens
	}
	return tokens
}

func (s *MemoryStore) Balance(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceLocked(userID), nil
}

func (s *MemoryStore) Deduct(ctx context.Context, userID string, amount int) (bool, error) {
	if amount < 0 {
		return false, types.InvalidOperation("negative debit")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens := s.balanceLocked(userID)
	if tokens < amount {
		return false, nil
	}
	s.wallets[userID] = tokens - amount
	return true, nil
}

func (s *MemoryStore) Credit(ctx context.Context, userID string, amount int) error {
	if amount < 0 {
		return types.InvalidOperation("negative credit")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[userID] = s.balanceLocked(userID) + amount
	return nil
}
