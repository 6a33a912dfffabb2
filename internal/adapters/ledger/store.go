package ledger

import (
	"context"
	"sync"

	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
)

// Store is the in-memory transactional entity store. It models the host
// ledger's execution guarantees: each Update runs as a single indivisible
// transaction and concurrent Updates serialize, so conflicting operations
// resolve with exactly one winner and the loser sees no partial state.
//
// Values are stored by value and treated as immutable; a transaction stages
// replacements and deletions that are applied to the base map only when the
// transaction function returns nil.
type Store struct {
	mu   sync.RWMutex
	data map[keys.Address]any
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		data: make(map[keys.Address]any),
	}
}

// View runs fn against a read-only snapshot
func (s *Store) View(ctx context.Context, fn func(tx repositories.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&txn{base: s.data, readOnly: true})
}

// Update runs fn against a staged transaction and commits the staged writes
// only when fn returns nil
func (s *Store) Update(ctx context.Context, fn func(tx repositories.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{
		base:    s.data,
		staged:  make(map[keys.Address]any),
		deleted: make(map[keys.Address]struct{}),
	}

	if err := fn(tx); err != nil {
		return err
	}

	for addr := range tx.deleted {
		delete(s.data, addr)
	}
	for addr, value := range tx.staged {
		s.data[addr] = value
	}

	return nil
}

type txn struct {
	base     map[keys.Address]any
	staged   map[keys.Address]any
	deleted  map[keys.Address]struct{}
	readOnly bool
}

func (t *txn) Get(addr keys.Address) (any, bool) {
	if !t.readOnly {
		if _, gone := t.deleted[addr]; gone {
			return nil, false
		}
		if v, ok := t.staged[addr]; ok {
			return v, true
		}
	}
	v, ok := t.base[addr]
	return v, ok
}

func (t *txn) Put(addr keys.Address, value any) {
	if t.readOnly {
		return
	}
	delete(t.deleted, addr)
	t.staged[addr] = value
}

func (t *txn) Delete(addr keys.Address) {
	if t.readOnly {
		return
	}
	delete(t.staged, addr)
	t.deleted[addr] = struct{}{}
}

func (t *txn) Range(fn func(addr keys.Address, value any) bool) {
	for addr, value := range t.base {
		if !t.readOnly {
			if _, gone := t.deleted[addr]; gone {
				continue
			}
			if staged, ok := t.staged[addr]; ok {
				value = staged
			}
		}
		if !fn(addr, value) {
			return
		}
	}
	if t.readOnly {
		return
	}
	for addr, value := range t.staged {
		if _, inBase := t.base[addr]; inBase {
			continue
		}
		if !fn(addr, value) {
			return
		}
	}
}
