package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zatekoja/claimsledger/internal/adapters/ledger"
	"github.com/zatekoja/claimsledger/internal/application/services"
	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/pkg/config"
)

const (
	ceoID       = "ceo-wallet"
	processorID = "processor-wallet"
	submitterID = "submitter-wallet"
	mintUSDC    = "usdc-mint"
)

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *ledger.Store
	admin     *services.AdminService
	registry  *services.RegistryService
	lifecycle *services.LifecycleService
	records   *services.RecordsService
	hammer    *services.HammerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.EngineConfig{
		DenialHammerBatchLimit: 25,
		ProcessorMaxDeny:       false,
	}
	store := ledger.NewStore()
	return &fixture{
		t:         t,
		ctx:       context.Background(),
		store:     store,
		admin:     services.NewAdminService(store),
		registry:  services.NewRegistryService(store),
		lifecycle: services.NewLifecycleService(store, nil, cfg),
		records:   services.NewRecordsService(store, nil),
		hammer:    services.NewHammerService(store, nil, cfg),
	}
}

// bootstrap provisions the singleton accounts, a fee token, one processor and
// one submitter with patient 0.
func (f *fixture) bootstrap() {
	f.t.Helper()
	require.NoError(f.t, f.admin.InitializeCeo(f.ctx, ceoID))
	require.NoError(f.t, f.admin.InitializeStats(f.ctx, ceoID))
	require.NoError(f.t, f.admin.InitializeQueue(f.ctx, ceoID))
	require.NoError(f.t, f.admin.AddFeeToken(f.ctx, ceoID, mintUSDC, 6))
	require.NoError(f.t, f.admin.CreateProcessor(f.ctx, ceoID, processorID))
	require.NoError(f.t, f.registry.CreateSubmitter(f.ctx, submitterID))
	require.NoError(f.t, f.registry.CreatePatient(f.ctx, submitterID, 0, "Ada", "Lovelace"))
}

func (f *fixture) claimInput() services.SubmitClaimInput {
	return services.SubmitClaimInput{
		PatientIndex:              0,
		Mint:                      mintUSDC,
		CountryIndex:              1,
		StateIndex:                2,
		HospitalIndex:             0,
		HospitalType:              1,
		HospitalName:              "General Hospital",
		HospitalAddress:           "1 Hospital Way",
		HospitalCity:              "Springfield",
		HospitalZipCode:           12345,
		HospitalPhoneNumber:       15551234567,
		HospitalBillInvoiceNumber: "INV-001",
		Note:                      "routine visit",
		Amount:                    125000,
		Ailment:                   "sprained ankle",
		InsuranceCompanyIndex:     7,
		InsuranceCompanyName:      "Acme Insurance",
	}
}

func (f *fixture) submit() *entities.Claim {
	f.t.Helper()
	claim, err := f.lifecycle.SubmitClaim(f.ctx, submitterID, f.claimInput())
	require.NoError(f.t, err)
	return claim
}

func (f *fixture) assign() *entities.ProcessedClaim {
	f.t.Helper()
	pc, err := f.lifecycle.AssignClaim(f.ctx, processorID, submitterID)
	require.NoError(f.t, err)
	return pc
}

// createAllRecords materializes the patient, hospital and insurance company
// records for the processor's in-progress claim.
func (f *fixture) createAllRecords() {
	f.t.Helper()
	require.NoError(f.t, f.records.CreatePatientRecord(f.ctx, processorID))
	require.NoError(f.t, f.records.CreateHospitalAndInsuranceCompanyRecords(f.ctx, processorID))
}

func (f *fixture) stats() entities.Stats {
	f.t.Helper()
	stats, err := f.admin.GetStats(f.ctx)
	require.NoError(f.t, err)
	return *stats
}

func (f *fixture) queue() entities.ClaimQueue {
	f.t.Helper()
	queue, err := f.admin.GetQueue(f.ctx)
	require.NoError(f.t, err)
	return *queue
}

func (f *fixture) processor() entities.ProcessorAccount {
	f.t.Helper()
	proc, err := f.admin.GetProcessor(f.ctx, processorID)
	require.NoError(f.t, err)
	return *proc
}
