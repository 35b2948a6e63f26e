package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/aether/internal/domain/account"
	"github.com/okian/aether/pkg/metrics"
)

// In-memory Store implementation.
//
// Locking: mu guards the id -> entry index only. Each entry carries its own
// mutex, so transactions on one account are serialized while different
// accounts proceed in parallel. Entries are never removed, which lets a
// caller drop mu before taking the entry lock.

type entry struct {
	mu    sync.Mutex
	state *account.State
}

// MemoryStore is the ledger's authoritative account map. It is constructed
// by the ledger service at start and owned by it.
type MemoryStore struct {
	mu            sync.RWMutex
	accounts      map[string]*entry
	allowNegative bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		accounts: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateAccountsTotal(0)
	return s
}

func (s *MemoryStore) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.accounts[id]
	return e, ok
}

// getOrCreate returns the entry for id, materializing it with zero balances.
func (s *MemoryStore) getOrCreate(id string) (*entry, bool) {
	if e, ok := s.lookup(id); ok {
		return e, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.accounts[id]; ok {
		return e, false
	}
	e := &entry{state: account.NewState()}
	s.accounts[id] = e
	metrics.UpdateAccountsTotal(len(s.accounts))
	return e, true
}

// GetAccount implements Store.GetAccount.
func (s *MemoryStore) GetAccount(_ context.Context, id string) (account.Account, bool) {
	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	e, ok := s.lookup(id)
	if !ok {
		return account.Account{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot(), true
}

// ApplyTransaction implements Store.ApplyTransaction.
func (s *MemoryStore) ApplyTransaction(_ context.Context, tx account.Transaction) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordApplyLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := tx.Validate(s.allowNegative); err != nil {
		reason := "invalid_reward"
		if errors.Is(err, account.ErrMissingAccountID) {
			reason = "missing_account"
		}
		metrics.RecordTransactionRejected(reason)
		metrics.RecordErrorByComponent("repository", reason)
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	e, created := s.getOrCreate(tx.AccountID)

	e.mu.Lock()
	defer e.mu.Unlock()

	applied, err := e.state.Apply(tx)
	if err != nil {
		metrics.RecordTransactionRejected("balance_overflow")
		metrics.RecordErrorByComponent("repository", "balance_overflow")
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	if applied {
		metrics.RecordTransactionApplied()
	} else {
		metrics.RecordTransactionIgnored()
	}

	return Result{
		Account: e.state.Snapshot(),
		Applied: applied,
		Created: created,
	}, nil
}

// Seed implements Store.Seed.
func (s *MemoryStore) Seed(_ context.Context, id string, acc account.Account) {
	e, _ := s.getOrCreate(id)
	e.mu.Lock()
	e.state = account.StateFrom(acc)
	e.mu.Unlock()
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// IDs implements Store.IDs.
func (s *MemoryStore) IDs(_ context.Context) []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}
