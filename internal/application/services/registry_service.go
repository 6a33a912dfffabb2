package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// RegistryService manages submitter accounts and their patient sub-records.
type RegistryService struct {
	ledger repositories.Ledger
}

// NewRegistryService creates a new registry service.
func NewRegistryService(ledger repositories.Ledger) *RegistryService {
	return &RegistryService{ledger: ledger}
}

// CreateSubmitter provisions a submitter account for signer. At most one
// account exists per identity.
func (s *RegistryService) CreateSubmitter(ctx context.Context, signer string) error {
	if signer == "" {
		return apperrors.NewValidationError("submitter identity is required")
	}
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		addr := keys.Submitter(signer)
		if _, ok := tx.Get(addr); ok {
			return apperrors.NewConflictError("submitter account already exists")
		}
		tx.Put(addr, entities.SubmitterAccount{
			Identity:  signer,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
}

// CreatePatient adds the next patient sub-record for signer. Patient indexes
// are dense: index must equal the submitter's current patient count.
func (s *RegistryService) CreatePatient(ctx context.Context, signer string, index uint8, firstName, lastName string) error {
	if firstName == "" || lastName == "" {
		return apperrors.NewValidationError("patient first and last name are required")
	}
	if utf8.RuneCountInString(firstName) > entities.MaxPatientNameLen || utf8.RuneCountInString(lastName) > entities.MaxPatientNameLen {
		return apperrors.NewValidationError(fmt.Sprintf("patient names are limited to %d characters", entities.MaxPatientNameLen))
	}

	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		subAddr := keys.Submitter(signer)
		submitter, ok := repositories.Get[entities.SubmitterAccount](tx, subAddr)
		if !ok {
			return apperrors.NewNotFoundError("submitter account not found")
		}
		if index != submitter.PatientCount {
			return apperrors.NewValidationError(fmt.Sprintf("patient index must be %d", submitter.PatientCount))
		}
		if err := bumpU8(&submitter.PatientCount, "patient"); err != nil {
			return err
		}

		tx.Put(keys.Patient(signer, index), entities.PatientAccount{
			Submitter: signer,
			Index:     index,
			FirstName: firstName,
			LastName:  lastName,
			CreatedAt: time.Now().UTC(),
		})
		tx.Put(subAddr, submitter)
		return nil
	})
}

// GetSubmitter returns a submitter account by identity.
func (s *RegistryService) GetSubmitter(ctx context.Context, identity string) (*entities.SubmitterAccount, error) {
	var submitter entities.SubmitterAccount
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		submitter, ok = repositories.Get[entities.SubmitterAccount](tx, keys.Submitter(identity))
		if !ok {
			return apperrors.NewNotFoundError("submitter account not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &submitter, nil
}

// GetPatient returns a patient sub-record.
func (s *RegistryService) GetPatient(ctx context.Context, submitter string, index uint8) (*entities.PatientAccount, error) {
	var patient entities.PatientAccount
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		patient, ok = repositories.Get[entities.PatientAccount](tx, keys.Patient(submitter, index))
		if !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("patient %d not found", index))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &patient, nil
}
