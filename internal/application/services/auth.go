package services

import (
	"fmt"
	"math"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// requireCeo verifies that signer owns the CEO account.
func requireCeo(tx repositories.Txn, signer string) error {
	ceo, ok := repositories.Get[entities.CeoAccount](tx, keys.Ceo())
	if !ok {
		return apperrors.NewNotFoundError("protocol owner is not initialized")
	}
	if ceo.Owner != signer {
		return apperrors.NewUnauthorizedError("signer is not the protocol owner")
	}
	return nil
}

// requireAdmin verifies that signer is the CEO or an active super-admin
// processor.
func requireAdmin(tx repositories.Txn, signer string) error {
	if ceo, ok := repositories.Get[entities.CeoAccount](tx, keys.Ceo()); ok && ceo.Owner == signer {
		return nil
	}
	proc, ok := repositories.Get[entities.ProcessorAccount](tx, keys.Processor(signer))
	if ok && proc.IsActive && proc.IsSuperAdmin {
		return nil
	}
	return apperrors.NewUnauthorizedError("signer is not the protocol owner or a super admin")
}

// requireActiveProcessor verifies that signer holds an active processor
// account and returns it.
func requireActiveProcessor(tx repositories.Txn, signer string) (entities.ProcessorAccount, error) {
	proc, ok := repositories.Get[entities.ProcessorAccount](tx, keys.Processor(signer))
	if !ok {
		return entities.ProcessorAccount{}, apperrors.NewUnauthorizedError("signer has no processor account")
	}
	if !proc.IsActive {
		return entities.ProcessorAccount{}, apperrors.NewUnauthorizedError("processor account is deactivated")
	}
	return proc, nil
}

// bump increments a uint64 counter, guarding against wraparound.
func bump(counter *uint64, name string) error {
	if *counter == math.MaxUint64 {
		return apperrors.NewOverflowError(fmt.Sprintf("%s counter is at its maximum", name))
	}
	*counter++
	return nil
}

// bumpU8 increments a uint8 counter, guarding against wraparound.
func bumpU8(counter *uint8, name string) error {
	if *counter == math.MaxUint8 {
		return apperrors.NewOverflowError(fmt.Sprintf("%s counter is at its maximum", name))
	}
	*counter++
	return nil
}

// bumpU32 increments a uint32 counter, guarding against wraparound.
func bumpU32(counter *uint32, name string) error {
	if *counter == math.MaxUint32 {
		return apperrors.NewOverflowError(fmt.Sprintf("%s counter is at its maximum", name))
	}
	*counter++
	return nil
}
