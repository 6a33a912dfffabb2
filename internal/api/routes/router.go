package routes

import (
	"net/http"

	"github.com/zatekoja/claimsledger/internal/api/handlers"
	"github.com/zatekoja/claimsledger/internal/api/middleware"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	adminHandler   *handlers.AdminHandler
	claimHandler   *handlers.ClaimHandler
	recordsHandler *handlers.RecordsHandler

	cacheMiddleware *middleware.CacheMiddleware
}

// NewRouter creates a new router
func NewRouter(
	adminHandler *handlers.AdminHandler,
	claimHandler *handlers.ClaimHandler,
	recordsHandler *handlers.RecordsHandler,
	cacheMiddleware *middleware.CacheMiddleware,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		adminHandler:    adminHandler,
		claimHandler:    claimHandler,
		recordsHandler:  recordsHandler,
		cacheMiddleware: cacheMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Administration endpoints
	r.mux.HandleFunc("POST /api/admin/ceo", r.adminHandler.InitializeCeo)
	r.mux.HandleFunc("POST /api/admin/ceo/transfer", r.adminHandler.PassOnCeo)
	r.mux.HandleFunc("POST /api/admin/stats", r.adminHandler.InitializeStats)
	r.mux.HandleFunc("POST /api/admin/queue", r.adminHandler.InitializeQueue)
	r.mux.HandleFunc("PATCH /api/admin/queue", r.adminHandler.SetQueueEnabled)
	r.mux.HandleFunc("POST /api/admin/fee-tokens", r.adminHandler.AddFeeToken)
	r.mux.HandleFunc("DELETE /api/admin/fee-tokens/{mint}", r.adminHandler.RemoveFeeToken)
	r.mux.HandleFunc("POST /api/admin/processors", r.adminHandler.CreateProcessor)
	r.mux.HandleFunc("PATCH /api/admin/processors/{id}", r.adminHandler.UpdateProcessor)

	// Master record administration
	r.mux.HandleFunc("POST /api/admin/states", r.recordsHandler.CreateStateAccount)
	r.mux.HandleFunc("POST /api/admin/hospitals", r.recordsHandler.CreateHospital)
	r.mux.HandleFunc("POST /api/admin/insurance-companies", r.recordsHandler.CreateInsuranceCompany)

	// Public lookups
	r.mux.HandleFunc("GET /api/stats", r.adminHandler.GetStats)
	r.mux.HandleFunc("GET /api/queue", r.adminHandler.GetQueue)
	r.mux.HandleFunc("GET /api/fee-tokens", r.adminHandler.ListFeeTokens)
	r.mux.HandleFunc("GET /api/processors/{id}", r.adminHandler.GetProcessor)
	r.mux.HandleFunc("GET /api/hospitals/{country}/{state}/{index}", r.recordsHandler.GetHospital)
	r.mux.HandleFunc("GET /api/insurance-companies/{index}", r.recordsHandler.GetInsuranceCompany)

	// Submitter registry endpoints
	r.mux.HandleFunc("POST /api/submitters", r.recordsHandler.CreateSubmitter)
	r.mux.HandleFunc("POST /api/patients", r.recordsHandler.CreatePatient)
	r.mux.HandleFunc("GET /api/submitters/{id}", r.recordsHandler.GetSubmitter)
	r.mux.HandleFunc("GET /api/submitters/{id}/patients/{index}", r.recordsHandler.GetPatient)
	r.mux.HandleFunc("GET /api/submitters/{id}/patient-records/{index}", r.recordsHandler.GetPatientRecord)

	// Claim endpoints
	r.mux.HandleFunc("POST /api/claims", r.claimHandler.SubmitClaim)
	r.mux.HandleFunc("GET /api/claims", r.claimHandler.ListClaims)
	r.mux.HandleFunc("GET /api/claims/{submitter}", r.claimHandler.GetClaim)
	r.mux.HandleFunc("POST /api/claims/{submitter}/assign", r.claimHandler.AssignClaim)
	r.mux.HandleFunc("POST /api/claims/{submitter}/max-deny-pending", r.claimHandler.MaxDenyPending)
	r.mux.HandleFunc("POST /api/claims/{submitter}/max-deny-in-progress", r.claimHandler.MaxDenyInProgress)
	r.mux.HandleFunc("POST /api/claims/purge", r.claimHandler.DropDenialHammer)

	// Processing endpoints act on the signing processor's in-progress claim
	r.mux.HandleFunc("POST /api/processing/patient-record", r.recordsHandler.CreatePatientRecord)
	r.mux.HandleFunc("POST /api/processing/master-records", r.recordsHandler.CreateMasterRecords)
	r.mux.HandleFunc("PATCH /api/processing/hospital-index", r.recordsHandler.UpdateHospitalIndex)
	r.mux.HandleFunc("PATCH /api/processing/insurance-index", r.recordsHandler.UpdateInsuranceIndex)
	r.mux.HandleFunc("POST /api/processing/approve", r.claimHandler.ApproveClaim)
	r.mux.HandleFunc("POST /api/processing/approve-with-edits", r.claimHandler.ApproveClaimWithEdits)
	r.mux.HandleFunc("POST /api/processing/deny", r.claimHandler.DenyClaim)
	r.mux.HandleFunc("POST /api/processing/deny-with-patient-record", r.claimHandler.DenyClaimWithPatientRecord)

	// Processed claim review endpoints target a processor's record history
	r.mux.HandleFunc("GET /api/processors/{id}/claims/{sequence}", r.claimHandler.GetProcessedClaim)
	r.mux.HandleFunc("PATCH /api/processors/{id}/claims/{sequence}", r.recordsHandler.EditProcessedClaim)
	r.mux.HandleFunc("POST /api/processors/{id}/claims/{sequence}/appeal", r.claimHandler.AppealClaim)
	r.mux.HandleFunc("POST /api/processors/{id}/claims/{sequence}/undeny", r.claimHandler.UndenyClaim)
	r.mux.HandleFunc("POST /api/processors/{id}/claims/{sequence}/deny-appeal", r.claimHandler.DenyAppeal)
	r.mux.HandleFunc("POST /api/processors/{id}/claims/{sequence}/revoke", r.claimHandler.RevokeApproval)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.SignerMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
