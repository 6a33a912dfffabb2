package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/claimsledger/internal/application/services"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

func TestCreatePatient(t *testing.T) {
	f := newFixture(t)
	f.bootstrap()

	// bootstrap created patient 0; indexes are dense.
	err := f.registry.CreatePatient(f.ctx, submitterID, 2, "Grace", "Hopper")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	require.NoError(t, f.registry.CreatePatient(f.ctx, submitterID, 1, "Grace", "Hopper"))

	sub, err := f.registry.GetSubmitter(f.ctx, submitterID)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), sub.PatientCount)
}

func TestCreateRecordsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.bootstrap()
	f.submit()
	f.assign()

	require.NoError(t, f.records.CreatePatientRecord(f.ctx, processorID))
	require.NoError(t, f.records.CreatePatientRecord(f.ctx, processorID))

	record, err := f.records.GetPatientRecord(f.ctx, submitterID, 0)
	require.NoError(t, err)
	assert.Equal(t, processorID, record.Processor)
	assert.Equal(t, uint64(0), record.Sequence)
	assert.Equal(t, "Ada", record.FirstName)

	require.NoError(t, f.records.CreateHospitalAndInsuranceCompanyRecords(f.ctx, processorID))
	require.NoError(t, f.records.CreateHospitalAndInsuranceCompanyRecords(f.ctx, processorID))

	hospital, err := f.records.GetHospital(f.ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "General Hospital", hospital.Name)

	insurance, err := f.records.GetInsuranceCompany(f.ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Acme Insurance", insurance.Name)
}

func TestHospitalIndexDensity(t *testing.T) {
	f := newFixture(t)
	f.bootstrap()

	input := f.claimInput()
	input.HospitalIndex = 5
	_, err := f.lifecycle.SubmitClaim(f.ctx, submitterID, input)
	require.NoError(t, err)
	f.assign()
	require.NoError(t, f.records.CreatePatientRecord(f.ctx, processorID))

	// Index 5 in an empty state directory skips indexes 0..4.
	err = f.records.CreateHospitalAndInsuranceCompanyRecords(f.ctx, processorID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	// The processor corrects the index, then record creation succeeds.
	require.NoError(t, f.records.UpdateClaimHospitalIndex(f.ctx, processorID, 0))
	require.NoError(t, f.records.CreateHospitalAndInsuranceCompanyRecords(f.ctx, processorID))

	_, err = f.records.GetHospital(f.ctx, 1, 2, 0)
	require.NoError(t, err)
}

func TestEditProcessedClaim(t *testing.T) {
	edits := services.ProcessedClaimEdits{
		HospitalIndex:             0,
		InsuranceCompanyIndex:     7,
		HospitalBillInvoiceNumber: "INV-OLD-07",
		Note:                      "historic amount corrected",
		Amount:                    45000,
		Ailment:                   "sprained ankle",
	}

	t.Run("corrects a finalized claim without moving counters", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		f.createAllRecords()
		require.NoError(t, f.lifecycle.ApproveClaim(f.ctx, processorID))
		before := f.stats()

		require.NoError(t, f.records.EditProcessedClaimAndAllRecords(f.ctx, ceoID, processorID, 0, edits))

		pc, err := f.lifecycle.GetProcessedClaim(f.ctx, processorID, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(45000), pc.Claim.Amount)
		assert.Equal(t, "APPROVED", string(pc.Status), "edits never change status")
		assert.False(t, pc.EditedAt.IsZero())
		assert.Equal(t, before, f.stats())
	})

	t.Run("rejects editing an in-progress claim", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		f.createAllRecords()

		err := f.records.EditProcessedClaimAndPatientRecord(f.ctx, ceoID, processorID, 0, edits)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidState))
	})

	t.Run("rejects editing a claim under appeal", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "no invoice"))
		require.NoError(t, f.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(f.ctx, submitterID, processorID, 0, mintUSDC, "attached"))

		err := f.records.EditProcessedClaimAndPatientRecord(f.ctx, ceoID, processorID, 0, edits)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidState))
	})

	t.Run("requires admin rights", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "no invoice"))

		err := f.records.EditProcessedClaimAndPatientRecord(f.ctx, processorID, processorID, 0, edits)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}

func TestDirectRecordCreation(t *testing.T) {
	f := newFixture(t)
	f.bootstrap()

	require.NoError(t, f.records.CreateStateAccount(f.ctx, ceoID, 1, 2))
	assert.True(t, apperrors.IsType(f.records.CreateStateAccount(f.ctx, ceoID, 1, 2), apperrors.ErrorTypeConflict))

	hospital, err := f.records.CreateHospital(f.ctx, ceoID, services.CreateHospitalInput{
		CountryIndex: 1,
		StateIndex:   2,
		Type:         1,
		Longitude:    -122.42,
		Latitude:     37.77,
		Name:         "Bay General",
		Address:      "500 Bay St",
		City:         "San Francisco",
		ZipCode:      94133,
		PhoneNumber:  14155550100,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), hospital.HospitalIndex)

	second, err := f.records.CreateHospital(f.ctx, ceoID, services.CreateHospitalInput{
		CountryIndex: 1,
		StateIndex:   2,
		Name:         "Mission Clinic",
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), second.HospitalIndex, "direct creates take the next dense index")

	require.NoError(t, f.records.CreateInsuranceCompany(f.ctx, ceoID, 7, "Acme Insurance", ""))
	assert.True(t, apperrors.IsType(f.records.CreateInsuranceCompany(f.ctx, ceoID, 7, "Acme Insurance", ""), apperrors.ErrorTypeConflict))

	// Non-owners may not create master records directly.
	err = f.records.CreateStateAccount(f.ctx, processorID, 3, 4)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}
