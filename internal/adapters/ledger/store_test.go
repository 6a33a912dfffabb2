package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/claimsledger/internal/adapters/ledger"
	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
)

func TestStore_CommitOnSuccess(t *testing.T) {
	store := ledger.NewStore()
	ctx := context.Background()
	addr := keys.Claim("wallet-1")

	err := store.Update(ctx, func(tx repositories.Txn) error {
		tx.Put(addr, entities.Claim{Submitter: "wallet-1", Status: entities.ClaimStatusQueued})
		return nil
	})
	require.NoError(t, err)

	err = store.View(ctx, func(tx repositories.Txn) error {
		claim, ok := repositories.Get[entities.Claim](tx, addr)
		require.True(t, ok)
		assert.Equal(t, entities.ClaimStatusQueued, claim.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_RollbackOnError(t *testing.T) {
	store := ledger.NewStore()
	ctx := context.Background()
	addr := keys.Claim("wallet-1")
	boom := errors.New("boom")

	err := store.Update(ctx, func(tx repositories.Txn) error {
		tx.Put(addr, entities.Claim{Submitter: "wallet-1"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.View(ctx, func(tx repositories.Txn) error {
		_, ok := repositories.Get[entities.Claim](tx, addr)
		assert.False(t, ok, "staged write must not survive a failed transaction")
		return nil
	})
	require.NoError(t, err)
}

func TestStore_StagedReadsAndDeletes(t *testing.T) {
	store := ledger.NewStore()
	ctx := context.Background()
	a := keys.Claim("a")
	b := keys.Claim("b")

	require.NoError(t, store.Update(ctx, func(tx repositories.Txn) error {
		tx.Put(a, entities.Claim{Submitter: "a"})
		return nil
	}))

	require.NoError(t, store.Update(ctx, func(tx repositories.Txn) error {
		// Staged writes are visible inside the same transaction.
		tx.Put(b, entities.Claim{Submitter: "b"})
		_, ok := tx.Get(b)
		assert.True(t, ok)

		// Deletes hide committed values inside the transaction.
		tx.Delete(a)
		_, ok = tx.Get(a)
		assert.False(t, ok)
		return nil
	}))

	require.NoError(t, store.View(ctx, func(tx repositories.Txn) error {
		_, ok := tx.Get(a)
		assert.False(t, ok)
		_, ok = tx.Get(b)
		assert.True(t, ok)
		return nil
	}))
}

func TestStore_ConcurrentCompareAndSetSingleWinner(t *testing.T) {
	store := ledger.NewStore()
	ctx := context.Background()
	addr := keys.Claim("wallet-1")

	require.NoError(t, store.Update(ctx, func(tx repositories.Txn) error {
		tx.Put(addr, entities.Claim{Submitter: "wallet-1", Status: entities.ClaimStatusQueued})
		return nil
	}))

	assign := func(processor string) error {
		return store.Update(ctx, func(tx repositories.Txn) error {
			claim, ok := repositories.Get[entities.Claim](tx, addr)
			if !ok {
				return errors.New("not found")
			}
			if claim.Status != entities.ClaimStatusQueued {
				return errors.New("already assigned")
			}
			claim.Status = entities.ClaimStatusAssigned
			claim.Processor = processor
			tx.Put(addr, claim)
			return nil
		})
	}

	const racers = 8
	var wg sync.WaitGroup
	results := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = assign("processor")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one assignment may succeed")
}

func TestStore_RangeSeesStagedState(t *testing.T) {
	store := ledger.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(tx repositories.Txn) error {
		tx.Put(keys.Claim("a"), entities.Claim{Submitter: "a"})
		tx.Put(keys.Claim("b"), entities.Claim{Submitter: "b"})
		return nil
	}))

	require.NoError(t, store.Update(ctx, func(tx repositories.Txn) error {
		tx.Delete(keys.Claim("a"))
		tx.Put(keys.Claim("c"), entities.Claim{Submitter: "c"})

		var seen []string
		tx.Range(func(_ keys.Address, value any) bool {
			if claim, ok := value.(entities.Claim); ok {
				seen = append(seen, claim.Submitter)
			}
			return true
		})
		assert.ElementsMatch(t, []string{"b", "c"}, seen)
		return nil
	}))
}
