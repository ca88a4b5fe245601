// internal/ledger/ledger.go

// Package ledger is the minimal balance bookkeeping contract the game
// needs: look a player's bankroll up, write it back after a hand. Front
// ends own the in-game arithmetic; the ledger only persists the result.
package ledger

import (
	"context"
	"sync"
)

// Store reads and writes player bankrolls by name.
type Store interface {
	// Balance returns the stored balance and whether the player is known.
	Balance(ctx context.Context, player string) (int, bool, error)
	SetBalance(ctx context.Context, player string, balance int) error
}

// MemoryStore is the default process-local ledger.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[string]int)}
}

func (s *MemoryStore) Balance(ctx context.Context, player string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.balances[player]
	return v, ok, nil
}

func (s *MemoryStore) SetBalance(ctx context.Context, player string, balance int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[player] = balance
	return nil
}
