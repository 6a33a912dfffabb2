package services

import (
	"fmt"
	"time"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// Helpers shared between the lifecycle and records services. All of them run
// inside an open ledger transaction.

// requirePatientRecord verifies the patient history record a claim refers to
// exists.
func requirePatientRecord(tx repositories.Txn, claim entities.Claim) error {
	if _, ok := tx.Get(keys.PatientRecord(claim.Submitter, claim.PatientIndex)); !ok {
		return apperrors.NewNotFoundError("patient record not found for claim")
	}
	return nil
}

// requireMasterRecords verifies the hospital and insurance company records a
// claim refers to exist.
func requireMasterRecords(tx repositories.Txn, claim entities.Claim) error {
	if _, ok := tx.Get(keys.Hospital(claim.CountryIndex, claim.StateIndex, claim.HospitalIndex)); !ok {
		return apperrors.NewNotFoundError("hospital record not found for claim")
	}
	if _, ok := tx.Get(keys.InsuranceCompany(claim.InsuranceCompanyIndex)); !ok {
		return apperrors.NewNotFoundError("insurance company record not found for claim")
	}
	return nil
}

// requireAllRecords verifies the full record set a claim refers to exists.
func requireAllRecords(tx repositories.Txn, claim entities.Claim) error {
	if err := requirePatientRecord(tx, claim); err != nil {
		return err
	}
	return requireMasterRecords(tx, claim)
}

// ensurePatientRecord creates the patient history record for a claim if it
// does not exist yet. Creation links the record to the processed claim that
// first materialized it; later claims leave that linkage in place.
func ensurePatientRecord(tx repositories.Txn, claim entities.Claim, processor string, sequence uint64) error {
	addr := keys.PatientRecord(claim.Submitter, claim.PatientIndex)
	if _, ok := tx.Get(addr); ok {
		return nil
	}

	patient, ok := repositories.Get[entities.PatientAccount](tx, keys.Patient(claim.Submitter, claim.PatientIndex))
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient %d not found for submitter", claim.PatientIndex))
	}

	tx.Put(addr, entities.PatientRecord{
		Submitter:    claim.Submitter,
		PatientIndex: claim.PatientIndex,
		Processor:    processor,
		Sequence:     sequence,
		FirstName:    patient.FirstName,
		LastName:     patient.LastName,
		CreatedAt:    time.Now().UTC(),
	})
	return nil
}

// ensureHospitalAndInsurance materializes the hospital and insurance company
// master records from a claim's snapshot fields, if they do not exist yet.
// Hospital indexes are dense per state: a claim may only materialize the next
// index in its state's directory.
func ensureHospitalAndInsurance(tx repositories.Txn, claim entities.Claim) error {
	if err := ensureHospital(tx, claim); err != nil {
		return err
	}
	return ensureInsuranceCompany(tx, claim)
}

func ensureHospital(tx repositories.Txn, claim entities.Claim) error {
	hospAddr := keys.Hospital(claim.CountryIndex, claim.StateIndex, claim.HospitalIndex)
	if _, ok := tx.Get(hospAddr); ok {
		return nil
	}

	stateAddr := keys.State(claim.CountryIndex, claim.StateIndex)
	state, ok := repositories.Get[entities.StateAccount](tx, stateAddr)
	if !ok {
		state = entities.StateAccount{
			CountryIndex: claim.CountryIndex,
			StateIndex:   claim.StateIndex,
			CreatedAt:    time.Now().UTC(),
		}
	}

	if claim.HospitalIndex > state.HospitalCount {
		return apperrors.NewValidationError(fmt.Sprintf("hospital index must not exceed %d", state.HospitalCount))
	}
	if claim.HospitalIndex < state.HospitalCount {
		// An earlier index without a record means it was created and the
		// directory already counts it. Nothing to materialize.
		return nil
	}

	if err := bumpU32(&state.HospitalCount, "hospital"); err != nil {
		return err
	}

	tx.Put(hospAddr, entities.HospitalRecord{
		CountryIndex:  claim.CountryIndex,
		StateIndex:    claim.StateIndex,
		HospitalIndex: claim.HospitalIndex,
		Type:          claim.HospitalType,
		Name:          claim.HospitalName,
		Address:       claim.HospitalAddress,
		City:          claim.HospitalCity,
		ZipCode:       claim.HospitalZipCode,
		PhoneNumber:   claim.HospitalPhoneNumber,
		CreatedAt:     time.Now().UTC(),
	})
	tx.Put(stateAddr, state)
	return nil
}

func ensureInsuranceCompany(tx repositories.Txn, claim entities.Claim) error {
	addr := keys.InsuranceCompany(claim.InsuranceCompanyIndex)
	if _, ok := tx.Get(addr); ok {
		return nil
	}
	tx.Put(addr, entities.InsuranceCompanyRecord{
		Index:     claim.InsuranceCompanyIndex,
		Name:      claim.InsuranceCompanyName,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}
