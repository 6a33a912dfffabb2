package repositories

import (
	"context"

	"github.com/zatekoja/claimsledger/internal/domain/keys"
)

// Txn is a consistent view over the entity store. Values put into a Txn are
// staged and become visible only when the enclosing Update commits. Stored
// values are treated as immutable: readers receive copies and writers replace
// whole values, never mutate shared state in place.
type Txn interface {
	// Get returns the value at addr, if present.
	Get(addr keys.Address) (any, bool)

	// Put stages a value at addr.
	Put(addr keys.Address, value any)

	// Delete stages removal of the value at addr.
	Delete(addr keys.Address)

	// Range iterates over all committed and staged values until fn
	// returns false.
	Range(fn func(addr keys.Address, value any) bool)
}

// Ledger is the transactional entity store backing the engine. Each Update
// executes as a single indivisible transaction: either every staged write
// commits or none does. Updates over the same store serialize, which is what
// resolves conflicting operations with exactly one winner.
type Ledger interface {
	// View runs fn against a read-only snapshot.
	View(ctx context.Context, fn func(tx Txn) error) error

	// Update runs fn against a staged transaction and commits the staged
	// writes only when fn returns nil.
	Update(ctx context.Context, fn func(tx Txn) error) error
}

// Get reads a typed value out of a transaction.
func Get[T any](tx Txn, addr keys.Address) (T, bool) {
	var zero T
	v, ok := tx.Get(addr)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
