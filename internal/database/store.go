package database

import (
	"sync"

	"gorm.io/gorm"
)

// Store serializes every ledger mutation. Atomic holds a process-wide lock
// for the whole database transaction, so no mutation observes another one
// half-applied and a failure rolls back everything it wrote.
type Store struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewStore wraps db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the handle for reads of committed state.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Atomic runs fn inside a transaction while holding the ledger lock. fn must
// use only the tx it is given.
func (s *Store) Atomic(fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Transaction(fn)
}
