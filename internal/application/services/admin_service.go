package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// AdminService manages the protocol's singleton accounts, role accounts and
// the fee token registry.
type AdminService struct {
	ledger repositories.Ledger
}

// NewAdminService creates a new admin service.
func NewAdminService(ledger repositories.Ledger) *AdminService {
	return &AdminService{ledger: ledger}
}

// InitializeCeo claims protocol ownership for signer. The CEO account exists
// at most once; initialization never overwrites a prior owner.
func (s *AdminService) InitializeCeo(ctx context.Context, signer string) error {
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if _, ok := tx.Get(keys.Ceo()); ok {
			return apperrors.NewConflictError("protocol owner is already initialized")
		}
		now := time.Now().UTC()
		tx.Put(keys.Ceo(), entities.CeoAccount{
			Owner:     signer,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return nil
	})
}

// PassOnCeo atomically transfers protocol ownership to newOwner.
func (s *AdminService) PassOnCeo(ctx context.Context, signer, newOwner string) error {
	if newOwner == "" {
		return apperrors.NewValidationError("new owner identity is required")
	}
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireCeo(tx, signer); err != nil {
			return err
		}
		ceo, _ := repositories.Get[entities.CeoAccount](tx, keys.Ceo())
		ceo.Owner = newOwner
		ceo.UpdatedAt = time.Now().UTC()
		tx.Put(keys.Ceo(), ceo)
		return nil
	})
}

// InitializeStats creates the singleton aggregate counter account.
func (s *AdminService) InitializeStats(ctx context.Context, signer string) error {
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireCeo(tx, signer); err != nil {
			return err
		}
		if _, ok := tx.Get(keys.Stats()); ok {
			return apperrors.NewConflictError("stats account is already initialized")
		}
		tx.Put(keys.Stats(), entities.Stats{CreatedAt: time.Now().UTC()})
		return nil
	})
}

// InitializeQueue creates the singleton claim queue, enabled for submissions.
func (s *AdminService) InitializeQueue(ctx context.Context, signer string) error {
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if _, ok := tx.Get(keys.Queue()); ok {
			return apperrors.NewConflictError("claim queue is already initialized")
		}
		tx.Put(keys.Queue(), entities.ClaimQueue{
			Enabled:   true,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
}

// SetQueueEnabled toggles whether the queue accepts new submissions.
func (s *AdminService) SetQueueEnabled(ctx context.Context, signer string, enabled bool) error {
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireAdmin(tx, signer); err != nil {
			return err
		}
		queue, ok := repositories.Get[entities.ClaimQueue](tx, keys.Queue())
		if !ok {
			return apperrors.NewNotFoundError("claim queue is not initialized")
		}
		queue.Enabled = enabled
		tx.Put(keys.Queue(), queue)
		return nil
	})
}

// AddFeeToken registers a payment-token mint as accepted for submissions.
func (s *AdminService) AddFeeToken(ctx context.Context, signer, mint string, decimals uint8) error {
	if mint == "" {
		return apperrors.NewValidationError("mint is required")
	}
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireCeo(tx, signer); err != nil {
			return err
		}
		addr := keys.FeeToken(mint)
		if _, ok := tx.Get(addr); ok {
			return apperrors.NewConflictError(fmt.Sprintf("fee token %s is already registered", mint))
		}
		tx.Put(addr, entities.FeeTokenEntry{
			Mint:      mint,
			Decimals:  decimals,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
}

// RemoveFeeToken deregisters a payment-token mint.
func (s *AdminService) RemoveFeeToken(ctx context.Context, signer, mint string) error {
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireCeo(tx, signer); err != nil {
			return err
		}
		addr := keys.FeeToken(mint)
		if _, ok := tx.Get(addr); !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("fee token %s is not registered", mint))
		}
		tx.Delete(addr)
		return nil
	})
}

// CreateProcessor provisions a processor account for identity. New processors
// start active and without super-admin rights.
func (s *AdminService) CreateProcessor(ctx context.Context, signer, identity string) error {
	if identity == "" {
		return apperrors.NewValidationError("processor identity is required")
	}
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireCeo(tx, signer); err != nil {
			return err
		}
		addr := keys.Processor(identity)
		if _, ok := tx.Get(addr); ok {
			return apperrors.NewConflictError(fmt.Sprintf("processor %s already exists", identity))
		}
		tx.Put(addr, entities.ProcessorAccount{
			Identity:  identity,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
}

// SetProcessorActive toggles a processor's active flag.
func (s *AdminService) SetProcessorActive(ctx context.Context, signer, identity string, active bool) error {
	return s.setProcessorFlag(ctx, signer, identity, func(proc *entities.ProcessorAccount) {
		proc.IsActive = active
	})
}

// SetProcessorAdmin toggles a processor's super-admin flag.
func (s *AdminService) SetProcessorAdmin(ctx context.Context, signer, identity string, admin bool) error {
	return s.setProcessorFlag(ctx, signer, identity, func(proc *entities.ProcessorAccount) {
		proc.IsSuperAdmin = admin
	})
}

func (s *AdminService) setProcessorFlag(ctx context.Context, signer, identity string, apply func(*entities.ProcessorAccount)) error {
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireCeo(tx, signer); err != nil {
			return err
		}
		addr := keys.Processor(identity)
		proc, ok := repositories.Get[entities.ProcessorAccount](tx, addr)
		if !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("processor %s not found", identity))
		}
		apply(&proc)
		tx.Put(addr, proc)
		return nil
	})
}

// GetCeo returns the current protocol owner.
func (s *AdminService) GetCeo(ctx context.Context) (*entities.CeoAccount, error) {
	var ceo entities.CeoAccount
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		ceo, ok = repositories.Get[entities.CeoAccount](tx, keys.Ceo())
		if !ok {
			return apperrors.NewNotFoundError("protocol owner is not initialized")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ceo, nil
}

// GetStats returns the aggregate counters.
func (s *AdminService) GetStats(ctx context.Context) (*entities.Stats, error) {
	var stats entities.Stats
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		stats, ok = repositories.Get[entities.Stats](tx, keys.Stats())
		if !ok {
			return apperrors.NewNotFoundError("stats account is not initialized")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetQueue returns the claim queue account.
func (s *AdminService) GetQueue(ctx context.Context) (*entities.ClaimQueue, error) {
	var queue entities.ClaimQueue
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		queue, ok = repositories.Get[entities.ClaimQueue](tx, keys.Queue())
		if !ok {
			return apperrors.NewNotFoundError("claim queue is not initialized")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &queue, nil
}

// GetProcessor returns a processor account by identity.
func (s *AdminService) GetProcessor(ctx context.Context, identity string) (*entities.ProcessorAccount, error) {
	var proc entities.ProcessorAccount
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		proc, ok = repositories.Get[entities.ProcessorAccount](tx, keys.Processor(identity))
		if !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("processor %s not found", identity))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &proc, nil
}

// ListFeeTokens returns every registered fee token.
func (s *AdminService) ListFeeTokens(ctx context.Context) ([]*entities.FeeTokenEntry, error) {
	var tokens []*entities.FeeTokenEntry
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		tx.Range(func(_ keys.Address, value any) bool {
			if entry, ok := value.(entities.FeeTokenEntry); ok {
				tokens = append(tokens, &entry)
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
