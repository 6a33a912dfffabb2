package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/providers"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// RecordsService manages the master records claims hang off: patient history
// records, state directories, hospital records and insurance company records.
// Record creation during processing is idempotent, so a processor can retry
// it safely.
type RecordsService struct {
	ledger repositories.Ledger
	events *eventPublisher
}

// NewRecordsService creates a new records service. The event bus may be nil.
func NewRecordsService(ledger repositories.Ledger, bus providers.EventBus) *RecordsService {
	return &RecordsService{
		ledger: ledger,
		events: newEventPublisher(bus),
	}
}

// CreatePatientRecord materializes the patient history record for the signing
// processor's in-progress claim. Calling it again is a no-op.
func (s *RecordsService) CreatePatientRecord(ctx context.Context, signer string) error {
	return s.withInProgress(ctx, signer, func(tx repositories.Txn, pc *entities.ProcessedClaim) error {
		return ensurePatientRecord(tx, pc.Claim, pc.Processor, pc.Sequence)
	})
}

// CreateHospitalAndInsuranceCompanyRecords materializes the hospital and
// insurance company records referenced by the signing processor's in-progress
// claim, from the claim's snapshot fields. Calling it again is a no-op.
func (s *RecordsService) CreateHospitalAndInsuranceCompanyRecords(ctx context.Context, signer string) error {
	return s.withInProgress(ctx, signer, func(tx repositories.Txn, pc *entities.ProcessedClaim) error {
		return ensureHospitalAndInsurance(tx, pc.Claim)
	})
}

// UpdateClaimHospitalIndex corrects the hospital index on the signing
// processor's in-progress claim, e.g. when the submitter picked the wrong
// hospital from the directory.
func (s *RecordsService) UpdateClaimHospitalIndex(ctx context.Context, signer string, hospitalIndex uint32) error {
	return s.withInProgress(ctx, signer, func(tx repositories.Txn, pc *entities.ProcessedClaim) error {
		pc.Claim.HospitalIndex = hospitalIndex
		return s.syncOpenClaim(tx, pc.Claim)
	})
}

// UpdateClaimInsuranceCompanyIndex corrects the insurance company index on the
// signing processor's in-progress claim.
func (s *RecordsService) UpdateClaimInsuranceCompanyIndex(ctx context.Context, signer string, insuranceCompanyIndex uint32) error {
	return s.withInProgress(ctx, signer, func(tx repositories.Txn, pc *entities.ProcessedClaim) error {
		pc.Claim.InsuranceCompanyIndex = insuranceCompanyIndex
		return s.syncOpenClaim(tx, pc.Claim)
	})
}

// syncOpenClaim writes the processed claim's snapshot back to the open claim
// entry so the two never disagree while the claim is assigned.
func (s *RecordsService) syncOpenClaim(tx repositories.Txn, claim entities.Claim) error {
	addr := keys.Claim(claim.Submitter)
	if _, ok := tx.Get(addr); !ok {
		return apperrors.NewNotFoundError("claim not found")
	}
	tx.Put(addr, claim)
	return nil
}

func (s *RecordsService) withInProgress(ctx context.Context, signer string, fn func(tx repositories.Txn, pc *entities.ProcessedClaim) error) error {
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		proc, err := requireActiveProcessor(tx, signer)
		if err != nil {
			return err
		}

		pcAddr := keys.ProcessedClaim(signer, proc.ProcessedClaimCount)
		pc, ok := repositories.Get[entities.ProcessedClaim](tx, pcAddr)
		if !ok {
			return apperrors.NewNotFoundError("processor has no claim in progress")
		}
		if pc.Status != entities.ProcessedStatusInProgress {
			return apperrors.NewInvalidStateError("processed claim is already finalized")
		}

		if err := fn(tx, &pc); err != nil {
			return err
		}
		tx.Put(pcAddr, pc)
		return nil
	})
}

// ProcessedClaimEdits carries the administrative corrections applicable to a
// finalized processed claim.
type ProcessedClaimEdits struct {
	HospitalIndex             uint32 `json:"hospital_index"`
	InsuranceCompanyIndex     uint32 `json:"insurance_company_index"`
	HospitalBillInvoiceNumber string `json:"hospital_bill_invoice_number"`
	Note                      string `json:"note"`
	Amount                    uint64 `json:"amount"`
	Ailment                   string `json:"ailment"`
}

func (e *ProcessedClaimEdits) validate() error {
	switch {
	case e.Amount == 0:
		return apperrors.NewValidationError("claim amount must be greater than zero")
	case utf8.RuneCountInString(e.HospitalBillInvoiceNumber) > entities.MaxInvoiceNumberLen:
		return apperrors.NewValidationError(fmt.Sprintf("invoice number is limited to %d characters", entities.MaxInvoiceNumberLen))
	case utf8.RuneCountInString(e.Note) > entities.MaxNoteLen:
		return apperrors.NewValidationError(fmt.Sprintf("note is limited to %d characters", entities.MaxNoteLen))
	case e.Ailment == "" || utf8.RuneCountInString(e.Ailment) > entities.MaxAilmentLen:
		return apperrors.NewValidationError(fmt.Sprintf("ailment is required and limited to %d characters", entities.MaxAilmentLen))
	}
	return nil
}

// EditProcessedClaimAndPatientRecord corrects a finalized processed claim.
// The claim's patient record must exist; appealed claims are off limits until
// their appeal is resolved. Edits never change status or counters.
func (s *RecordsService) EditProcessedClaimAndPatientRecord(ctx context.Context, signer, processor string, sequence uint64, edits ProcessedClaimEdits) error {
	return s.edit(ctx, signer, processor, sequence, edits, false)
}

// EditProcessedClaimAndAllRecords corrects a finalized processed claim,
// additionally requiring that the hospital and insurance company records at
// the edited indexes exist.
func (s *RecordsService) EditProcessedClaimAndAllRecords(ctx context.Context, signer, processor string, sequence uint64, edits ProcessedClaimEdits) error {
	return s.edit(ctx, signer, processor, sequence, edits, true)
}

func (s *RecordsService) edit(ctx context.Context, signer, processor string, sequence uint64, edits ProcessedClaimEdits, needMasterRecords bool) error {
	if err := edits.validate(); err != nil {
		return err
	}

	var event entities.ClaimEvent
	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireAdmin(tx, signer); err != nil {
			return err
		}

		pcAddr := keys.ProcessedClaim(processor, sequence)
		pc, ok := repositories.Get[entities.ProcessedClaim](tx, pcAddr)
		if !ok {
			return apperrors.NewNotFoundError("processed claim not found")
		}
		if !pc.Status.Finalized() {
			return apperrors.NewInvalidStateError("processed claim is still in progress")
		}
		if pc.Status == entities.ProcessedStatusAppealed {
			return apperrors.NewInvalidStateError("processed claim is under appeal")
		}

		pc.Claim.HospitalIndex = edits.HospitalIndex
		pc.Claim.InsuranceCompanyIndex = edits.InsuranceCompanyIndex
		pc.Claim.HospitalBillInvoiceNumber = edits.HospitalBillInvoiceNumber
		pc.Claim.Note = edits.Note
		pc.Claim.Amount = edits.Amount
		pc.Claim.Ailment = edits.Ailment

		if err := requirePatientRecord(tx, pc.Claim); err != nil {
			return err
		}
		if needMasterRecords {
			if err := requireMasterRecords(tx, pc.Claim); err != nil {
				return err
			}
		}

		pc.EditedAt = time.Now().UTC()
		tx.Put(pcAddr, pc)

		event = entities.ClaimEvent{
			Type:      entities.ClaimEventEdited,
			Submitter: pc.Claim.Submitter,
			Processor: processor,
			Sequence:  pc.Sequence,
			Status:    pc.Status,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.publish(ctx, &event)
	return nil
}

// CreateStateAccount provisions a (country, state) directory directly.
func (s *RecordsService) CreateStateAccount(ctx context.Context, signer string, countryIndex, stateIndex uint16) error {
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireCeo(tx, signer); err != nil {
			return err
		}
		addr := keys.State(countryIndex, stateIndex)
		if _, ok := tx.Get(addr); ok {
			return apperrors.NewConflictError("state account already exists")
		}
		tx.Put(addr, entities.StateAccount{
			CountryIndex: countryIndex,
			StateIndex:   stateIndex,
			CreatedAt:    time.Now().UTC(),
		})
		return nil
	})
}

// CreateHospitalInput carries the fields of a directly created hospital
// record. Coordinates are only known on this path.
type CreateHospitalInput struct {
	CountryIndex uint16  `json:"country_index"`
	StateIndex   uint16  `json:"state_index"`
	Type         uint8   `json:"type"`
	Longitude    float64 `json:"longitude"`
	Latitude     float64 `json:"latitude"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	ZipCode      uint32  `json:"zip_code"`
	PhoneNumber  uint64  `json:"phone_number"`
	Note         string  `json:"note"`
}

func (in *CreateHospitalInput) validate() error {
	switch {
	case in.Name == "" || utf8.RuneCountInString(in.Name) > entities.MaxHospitalNameLen:
		return apperrors.NewValidationError(fmt.Sprintf("hospital name is required and limited to %d characters", entities.MaxHospitalNameLen))
	case utf8.RuneCountInString(in.Address) > entities.MaxAddressLen:
		return apperrors.NewValidationError(fmt.Sprintf("hospital address is limited to %d characters", entities.MaxAddressLen))
	case utf8.RuneCountInString(in.City) > entities.MaxCityLen:
		return apperrors.NewValidationError(fmt.Sprintf("hospital city is limited to %d characters", entities.MaxCityLen))
	case utf8.RuneCountInString(in.Note) > entities.MaxNoteLen:
		return apperrors.NewValidationError(fmt.Sprintf("note is limited to %d characters", entities.MaxNoteLen))
	}
	return nil
}

// CreateHospital appends a hospital record to its state's directory. The
// state account must already exist; the record takes the directory's next
// index.
func (s *RecordsService) CreateHospital(ctx context.Context, signer string, input CreateHospitalInput) (*entities.HospitalRecord, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var record entities.HospitalRecord
	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireCeo(tx, signer); err != nil {
			return err
		}

		stateAddr := keys.State(input.CountryIndex, input.StateIndex)
		state, ok := repositories.Get[entities.StateAccount](tx, stateAddr)
		if !ok {
			return apperrors.NewNotFoundError("state account not found")
		}

		index := state.HospitalCount
		if err := bumpU32(&state.HospitalCount, "hospital"); err != nil {
			return err
		}

		record = entities.HospitalRecord{
			CountryIndex:  input.CountryIndex,
			StateIndex:    input.StateIndex,
			HospitalIndex: index,
			Type:          input.Type,
			Longitude:     input.Longitude,
			Latitude:      input.Latitude,
			Name:          input.Name,
			Address:       input.Address,
			City:          input.City,
			ZipCode:       input.ZipCode,
			PhoneNumber:   input.PhoneNumber,
			Note:          input.Note,
			CreatedAt:     time.Now().UTC(),
		}
		tx.Put(keys.Hospital(input.CountryIndex, input.StateIndex, index), record)
		tx.Put(stateAddr, state)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateInsuranceCompany provisions an insurance company record directly.
func (s *RecordsService) CreateInsuranceCompany(ctx context.Context, signer string, index uint32, name, note string) error {
	if name == "" || utf8.RuneCountInString(name) > entities.MaxInsuranceNameLen {
		return apperrors.NewValidationError(fmt.Sprintf("insurance company name is required and limited to %d characters", entities.MaxInsuranceNameLen))
	}
	if utf8.RuneCountInString(note) > entities.MaxNoteLen {
		return apperrors.NewValidationError(fmt.Sprintf("note is limited to %d characters", entities.MaxNoteLen))
	}
	return s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireCeo(tx, signer); err != nil {
			return err
		}
		addr := keys.InsuranceCompany(index)
		if _, ok := tx.Get(addr); ok {
			return apperrors.NewConflictError("insurance company record already exists")
		}
		tx.Put(addr, entities.InsuranceCompanyRecord{
			Index:     index,
			Name:      name,
			Note:      note,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
}

// GetPatientRecord returns a patient history record.
func (s *RecordsService) GetPatientRecord(ctx context.Context, submitter string, patientIndex uint8) (*entities.PatientRecord, error) {
	var record entities.PatientRecord
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		record, ok = repositories.Get[entities.PatientRecord](tx, keys.PatientRecord(submitter, patientIndex))
		if !ok {
			return apperrors.NewNotFoundError("patient record not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetHospital returns a hospital master record.
func (s *RecordsService) GetHospital(ctx context.Context, countryIndex, stateIndex uint16, hospitalIndex uint32) (*entities.HospitalRecord, error) {
	var record entities.HospitalRecord
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		record, ok = repositories.Get[entities.HospitalRecord](tx, keys.Hospital(countryIndex, stateIndex, hospitalIndex))
		if !ok {
			return apperrors.NewNotFoundError("hospital record not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetInsuranceCompany returns an insurance company master record.
func (s *RecordsService) GetInsuranceCompany(ctx context.Context, index uint32) (*entities.InsuranceCompanyRecord, error) {
	var record entities.InsuranceCompanyRecord
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		record, ok = repositories.Get[entities.InsuranceCompanyRecord](tx, keys.InsuranceCompany(index))
		if !ok {
			return apperrors.NewNotFoundError("insurance company record not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
