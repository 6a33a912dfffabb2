package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/claimsledger/internal/adapters/ledger"
	"github.com/zatekoja/claimsledger/internal/api/handlers"
	"github.com/zatekoja/claimsledger/internal/api/middleware"
	"github.com/zatekoja/claimsledger/internal/api/routes"
	"github.com/zatekoja/claimsledger/internal/application/services"
	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/pkg/config"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.EngineConfig{DenialHammerBatchLimit: 25}
	store := ledger.NewStore()

	admin := services.NewAdminService(store)
	registry := services.NewRegistryService(store)
	lifecycle := services.NewLifecycleService(store, nil, cfg)
	records := services.NewRecordsService(store, nil)
	hammer := services.NewHammerService(store, nil, cfg)

	ctx := context.Background()
	require.NoError(t, admin.InitializeCeo(ctx, "ceo"))
	require.NoError(t, admin.InitializeStats(ctx, "ceo"))
	require.NoError(t, admin.InitializeQueue(ctx, "ceo"))
	require.NoError(t, admin.AddFeeToken(ctx, "ceo", "usdc", 6))
	require.NoError(t, registry.CreateSubmitter(ctx, "wallet-1"))
	require.NoError(t, registry.CreatePatient(ctx, "wallet-1", 0, "Ada", "Lovelace"))

	router := routes.NewRouter(
		handlers.NewAdminHandler(admin),
		handlers.NewClaimHandler(lifecycle, hammer),
		handlers.NewRecordsHandler(registry, records),
		nil,
	)
	return router.SetupRoutes()
}

func submitBody() string {
	return `{
		"patient_index": 0,
		"mint": "usdc",
		"country_index": 1,
		"state_index": 2,
		"hospital_index": 0,
		"hospital_name": "General Hospital",
		"hospital_city": "Springfield",
		"amount": 125000,
		"ailment": "sprained ankle",
		"insurance_company_index": 7,
		"insurance_company_name": "Acme Insurance"
	}`
}

func TestSubmitClaimEndpoint(t *testing.T) {
	t.Run("rejects requests without a signer", func(t *testing.T) {
		server := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(submitBody()))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("queues a claim for the signer", func(t *testing.T) {
		server := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(submitBody()))
		req.Header.Set(middleware.SignerHeader, "wallet-1")
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var claim entities.Claim
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &claim))
		assert.Equal(t, "wallet-1", claim.Submitter)
		assert.Equal(t, entities.ClaimStatusQueued, claim.Status)
	})

	t.Run("maps a duplicate submission to 409", func(t *testing.T) {
		server := newTestServer(t)

		for i, want := range []int{http.StatusCreated, http.StatusConflict} {
			req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(submitBody()))
			req.Header.Set(middleware.SignerHeader, "wallet-1")
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			assert.Equal(t, want, rec.Code, "request %d", i)
		}
	})

	t.Run("maps an unknown payment token to 422", func(t *testing.T) {
		server := newTestServer(t)

		body := strings.Replace(submitBody(), `"usdc"`, `"unknown"`, 1)
		req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(body))
		req.Header.Set(middleware.SignerHeader, "wallet-1")
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestStatsEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats entities.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, uint64(0), stats.ProcessedClaimCount)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
