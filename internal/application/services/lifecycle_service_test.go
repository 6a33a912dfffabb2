package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/claimsledger/internal/application/services"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

func TestSubmitClaim(t *testing.T) {
	t.Run("queues a new claim", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()

		claim := f.submit()
		assert.Equal(t, submitterID, claim.Submitter)
		assert.Equal(t, "QUEUED", string(claim.Status))

		got, err := f.lifecycle.GetClaim(f.ctx, submitterID)
		require.NoError(t, err)
		assert.Equal(t, claim.Amount, got.Amount)
	})

	t.Run("rejects a second open claim from the same submitter", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()

		_, err := f.lifecycle.SubmitClaim(f.ctx, submitterID, f.claimInput())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})

	t.Run("rejects submission while the queue is disabled", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		require.NoError(t, f.admin.SetQueueEnabled(f.ctx, ceoID, false))

		_, err := f.lifecycle.SubmitClaim(f.ctx, submitterID, f.claimInput())
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeQueueDisabled))

		require.NoError(t, f.admin.SetQueueEnabled(f.ctx, ceoID, true))
		f.submit()
	})

	t.Run("rejects an unregistered payment token", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()

		input := f.claimInput()
		input.Mint = "unknown-mint"
		_, err := f.lifecycle.SubmitClaim(f.ctx, submitterID, input)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnknownPaymentToken))
	})

	t.Run("rejects an unknown patient index", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()

		input := f.claimInput()
		input.PatientIndex = 3
		_, err := f.lifecycle.SubmitClaim(f.ctx, submitterID, input)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("rejects over-length fields", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()

		input := f.claimInput()
		input.Ailment = "an ailment description far too long to fit inside the allowed field"
		_, err := f.lifecycle.SubmitClaim(f.ctx, submitterID, input)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("counts field limits in characters, not bytes", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()

		input := f.claimInput()
		// 45 characters but 90 bytes; must pass the 45-character limit.
		input.Ailment = strings.Repeat("é", 45)
		_, err := f.lifecycle.SubmitClaim(f.ctx, submitterID, input)
		require.NoError(t, err)

		input.Ailment = strings.Repeat("é", 46)
		_, err = f.lifecycle.SubmitClaim(f.ctx, submitterID, input)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestAssignClaim(t *testing.T) {
	t.Run("moves the claim to the processor", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()

		pc := f.assign()
		assert.Equal(t, processorID, pc.Processor)
		assert.Equal(t, uint64(0), pc.Sequence)
		assert.Equal(t, "IN_PROGRESS", string(pc.Status))

		claim, err := f.lifecycle.GetClaim(f.ctx, submitterID)
		require.NoError(t, err)
		assert.Equal(t, "ASSIGNED", string(claim.Status))
		assert.Equal(t, processorID, claim.Processor)
	})

	t.Run("rejects assigning an already assigned claim and leaves stats untouched", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		require.NoError(t, f.admin.CreateProcessor(f.ctx, ceoID, "second-processor"))
		f.submit()
		f.assign()
		before := f.stats()

		_, err := f.lifecycle.AssignClaim(f.ctx, "second-processor", submitterID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidState))
		assert.Equal(t, before, f.stats())
	})

	t.Run("rejects an inactive processor", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		require.NoError(t, f.admin.SetProcessorActive(f.ctx, ceoID, processorID, false))
		f.submit()

		_, err := f.lifecycle.AssignClaim(f.ctx, processorID, submitterID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}

func TestApproveClaim(t *testing.T) {
	t.Run("full round trip moves every counter once", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		f.createAllRecords()

		require.NoError(t, f.lifecycle.ApproveClaim(f.ctx, processorID))

		stats := f.stats()
		assert.Equal(t, uint64(1), stats.ProcessedClaimCount)
		assert.Equal(t, uint64(1), stats.ApprovedClaimCount)
		assert.Equal(t, uint64(0), stats.DeniedClaimCount)

		assert.Equal(t, uint64(1), f.processor().ProcessedClaimCount)

		pc, err := f.lifecycle.GetProcessedClaim(f.ctx, processorID, 0)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", string(pc.Status))
		assert.False(t, pc.FinalizedAt.IsZero())

		_, err = f.lifecycle.GetClaim(f.ctx, submitterID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound), "open claim must be removed on approval")
	})

	t.Run("fails when master records are missing", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		require.NoError(t, f.records.CreatePatientRecord(f.ctx, processorID))

		err := f.lifecycle.ApproveClaim(f.ctx, processorID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		assert.Equal(t, uint64(0), f.stats().ProcessedClaimCount)
	})

	t.Run("with edits rewrites the billing fields", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		f.createAllRecords()

		edits := services.ClaimEdits{
			HospitalBillInvoiceNumber: "INV-002",
			Note:                      "amount corrected",
			Amount:                    99000,
			Ailment:                   "sprained ankle",
		}
		require.NoError(t, f.lifecycle.ApproveClaimWithEdits(f.ctx, processorID, edits))

		pc, err := f.lifecycle.GetProcessedClaim(f.ctx, processorID, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(99000), pc.Claim.Amount)
		assert.Equal(t, "INV-002", pc.Claim.HospitalBillInvoiceNumber)
		assert.Equal(t, "APPROVED", string(pc.Status))
	})
}

func TestDenyAndAppealFlow(t *testing.T) {
	t.Run("deny then appeal then undeny", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()

		require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "no invoice attached"))

		stats := f.stats()
		assert.Equal(t, uint64(1), stats.ProcessedClaimCount)
		assert.Equal(t, uint64(1), stats.DeniedClaimCount)

		require.NoError(t, f.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(f.ctx, submitterID, processorID, 0, mintUSDC, "invoice now attached"))

		require.NoError(t, f.lifecycle.UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords(f.ctx, ceoID, processorID, 0))

		pc, err := f.lifecycle.GetProcessedClaim(f.ctx, processorID, 0)
		require.NoError(t, err)
		assert.Equal(t, "UNDENIED", string(pc.Status))
		assert.Equal(t, []string{"no invoice attached"}, pc.DenialReasons)
		assert.Equal(t, []string{"invoice now attached"}, pc.AppealReasons)

		stats = f.stats()
		assert.Equal(t, uint64(1), stats.UndeniedClaimCount)
		assert.Equal(t, uint64(1), stats.DeniedClaimCount, "denied count stays; undenial never rolls counters back")
		assert.Equal(t, uint64(1), stats.ProcessedClaimCount, "review transitions never consume a second sequence")
		assert.Equal(t, uint64(1), f.processor().ProcessedClaimCount)

		// The undeny materialized the master records from the claim snapshot.
		_, err = f.records.GetHospital(f.ctx, 1, 2, 0)
		require.NoError(t, err)
		_, err = f.records.GetInsuranceCompany(f.ctx, 7)
		require.NoError(t, err)
	})

	t.Run("deny then appeal then deny the appeal", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()

		require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "not covered"))
		require.NoError(t, f.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(f.ctx, submitterID, processorID, 0, mintUSDC, "policy says otherwise"))
		require.NoError(t, f.lifecycle.DenyAppealedClaimWithOnlyPatientRecord(f.ctx, ceoID, processorID, 0, "policy excludes this ailment"))

		pc, err := f.lifecycle.GetProcessedClaim(f.ctx, processorID, 0)
		require.NoError(t, err)
		assert.Equal(t, "APPEAL_DENIED", string(pc.Status))
		assert.Equal(t, uint64(1), f.stats().DeniedAppealCount)

		// A denied appeal is terminal.
		err = f.lifecycle.DenyAppealedClaimWithOnlyPatientRecord(f.ctx, ceoID, processorID, 0, "again")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidState))
	})

	t.Run("appeal requires the original payment token", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "not covered"))

		err := f.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(f.ctx, submitterID, processorID, 0, "other-mint", "please")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("only the submitter may appeal", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "not covered"))

		err := f.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(f.ctx, "someone-else", processorID, 0, mintUSDC, "please")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})

	t.Run("an older denial stays appealable after a newer finalize", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "no invoice"))

		// The same processor finalizes a second submitter's claim, advancing
		// its sequence counter past the first denial.
		const other = "other-submitter"
		require.NoError(t, f.registry.CreateSubmitter(f.ctx, other))
		require.NoError(t, f.registry.CreatePatient(f.ctx, other, 0, "Grace", "Hopper"))
		_, err := f.lifecycle.SubmitClaim(f.ctx, other, f.claimInput())
		require.NoError(t, err)
		_, err = f.lifecycle.AssignClaim(f.ctx, processorID, other)
		require.NoError(t, err)
		require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "not covered"))

		// The first submitter addresses its own record by sequence.
		require.NoError(t, f.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(f.ctx, submitterID, processorID, 0, mintUSDC, "invoice attached"))

		first, err := f.lifecycle.GetProcessedClaim(f.ctx, processorID, 0)
		require.NoError(t, err)
		assert.Equal(t, "APPEALED", string(first.Status))

		second, err := f.lifecycle.GetProcessedClaim(f.ctx, processorID, 1)
		require.NoError(t, err)
		assert.Equal(t, "DENIED", string(second.Status))

		// Addressing another submitter's sequence still fails.
		err = f.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(f.ctx, submitterID, processorID, 1, mintUSDC, "wrong record")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})

	t.Run("undeny requires admin rights", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()
		require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "not covered"))
		require.NoError(t, f.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(f.ctx, submitterID, processorID, 0, mintUSDC, "please"))

		err := f.lifecycle.UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords(f.ctx, processorID, processorID, 0)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

		// A super admin passes the same gate.
		require.NoError(t, f.admin.SetProcessorAdmin(f.ctx, ceoID, processorID, true))
		require.NoError(t, f.lifecycle.UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords(f.ctx, processorID, processorID, 0))
	})
}

func TestRevokeApproval(t *testing.T) {
	f := newFixture(t)
	f.bootstrap()
	f.submit()
	f.assign()
	f.createAllRecords()
	require.NoError(t, f.lifecycle.ApproveClaim(f.ctx, processorID))

	require.NoError(t, f.lifecycle.RevokeApproval(f.ctx, ceoID, processorID, 0, "duplicate invoice discovered"))

	pc, err := f.lifecycle.GetProcessedClaim(f.ctx, processorID, 0)
	require.NoError(t, err)
	assert.Equal(t, "REVOKED", string(pc.Status))
	assert.Equal(t, []string{"duplicate invoice discovered"}, pc.DenialReasons)

	stats := f.stats()
	assert.Equal(t, uint64(1), stats.ApprovedClaimCount, "approved count stands after revocation")
	assert.Equal(t, uint64(1), stats.RevokedApprovalCount)

	// No lifecycle edge leaves a revoked record.
	err = f.lifecycle.RevokeApproval(f.ctx, ceoID, processorID, 0, "again")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidState))
}

func TestMaxDeny(t *testing.T) {
	t.Run("pending claim is denied without assignment", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		// The CEO needs its own processor account for the sequence slot.
		require.NoError(t, f.admin.CreateProcessor(f.ctx, ceoID, ceoID))
		f.submit()

		require.NoError(t, f.lifecycle.MaxDenyPendingClaim(f.ctx, ceoID, submitterID, "spam submission"))

		stats := f.stats()
		assert.Equal(t, uint64(1), stats.ProcessedClaimCount)
		assert.Equal(t, uint64(1), stats.MaxDeniedClaimCount)
		assert.Equal(t, uint64(1), f.queue().MaxDeniedClaimCount)

		pc, err := f.lifecycle.GetProcessedClaim(f.ctx, ceoID, 0)
		require.NoError(t, err)
		assert.Equal(t, "MAX_DENIED", string(pc.Status))

		_, err = f.lifecycle.GetClaim(f.ctx, submitterID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("in-progress claim finalizes the assigned processor's record", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()
		f.assign()

		require.NoError(t, f.lifecycle.MaxDenyInProgressClaim(f.ctx, ceoID, submitterID, "fraudulent invoice"))

		pc, err := f.lifecycle.GetProcessedClaim(f.ctx, processorID, 0)
		require.NoError(t, err)
		assert.Equal(t, "MAX_DENIED", string(pc.Status))
		assert.Equal(t, uint64(1), f.processor().ProcessedClaimCount, "the assigned processor's sequence is consumed")

		stats := f.stats()
		assert.Equal(t, uint64(1), stats.ProcessedClaimCount)
		assert.Equal(t, uint64(1), stats.MaxDeniedClaimCount)
	})

	t.Run("plain processors are gated off by default", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		f.submit()

		err := f.lifecycle.MaxDenyPendingClaim(f.ctx, processorID, submitterID, "spam")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}

func TestCounterConsistency(t *testing.T) {
	// Drive several claims through different terminals and check the
	// aggregate identity: processed = approved + denied + max denied.
	f := newFixture(t)
	f.bootstrap()
	require.NoError(t, f.admin.CreateProcessor(f.ctx, ceoID, ceoID))

	// Approved.
	f.submit()
	f.assign()
	f.createAllRecords()
	require.NoError(t, f.lifecycle.ApproveClaim(f.ctx, processorID))

	// Denied, then appealed and undenied.
	f.submit()
	f.assign()
	require.NoError(t, f.lifecycle.CreatePatientRecordAndDenyClaim(f.ctx, processorID, "no invoice"))
	require.NoError(t, f.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(f.ctx, submitterID, processorID, 1, mintUSDC, "attached now"))
	require.NoError(t, f.lifecycle.UndenyClaimWithAllRecords(f.ctx, ceoID, processorID, 1))

	// Max denied while pending.
	f.submit()
	require.NoError(t, f.lifecycle.MaxDenyPendingClaim(f.ctx, ceoID, submitterID, "spam"))

	stats := f.stats()
	assert.Equal(t, stats.ProcessedClaimCount, stats.ApprovedClaimCount+stats.DeniedClaimCount+stats.MaxDeniedClaimCount)
	assert.Equal(t, uint64(3), stats.ProcessedClaimCount)
	assert.Equal(t, uint64(1), stats.UndeniedClaimCount)
	assert.LessOrEqual(t, stats.UndeniedClaimCount, stats.DeniedClaimCount)
}
