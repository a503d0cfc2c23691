package account

import (
	"context"
	"sync"
)

// MemoryStore keeps accounts in process memory. A per-account mutex guards
// the read-modify-write cycle so two settlements on one player cannot drop a
// delta; unrelated players proceed in parallel.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	locks    map[string]*sync.Mutex
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) Create(_ context.Context, acct Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acct.Username]; exists {
		return ErrExists
	}
	s.accounts[acct.Username] = acct
	s.locks[acct.Username] = &sync.Mutex{}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, username string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[username]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

func (s *MemoryStore) Update(_ context.Context, username string, fn func(*Account) error) (Account, error) {
	s.mu.RLock()
	lock, ok := s.locks[username]
	s.mu.RUnlock()
	if !ok {
		return Account{}, ErrNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	acct := s.accounts[username]
	s.mu.RUnlock()

	if err := fn(&acct); err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	s.accounts[username] = acct
	s.mu.Unlock()
	return acct, nil
}
