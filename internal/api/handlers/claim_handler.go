package handlers

import (
	"net/http"

	"github.com/zatekoja/claimsledger/internal/application/services"
)

// ClaimHandler exposes the claim lifecycle: submission, assignment,
// adjudication, appeals, administrative review and the denial hammer.
type ClaimHandler struct {
	lifecycle *services.LifecycleService
	hammer    *services.HammerService
}

// NewClaimHandler creates a new claim handler.
func NewClaimHandler(lifecycle *services.LifecycleService, hammer *services.HammerService) *ClaimHandler {
	return &ClaimHandler{
		lifecycle: lifecycle,
		hammer:    hammer,
	}
}

// SubmitClaim handles POST /api/claims
func (h *ClaimHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var input services.SubmitClaimInput
	if !decodeJSON(w, r, &input) {
		return
	}
	claim, err := h.lifecycle.SubmitClaim(r.Context(), signer, input)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, claim)
}

// GetClaim handles GET /api/claims/{submitter}
func (h *ClaimHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := h.lifecycle.GetClaim(r.Context(), r.PathValue("submitter"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, claim)
}

// ListClaims handles GET /api/claims
func (h *ClaimHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.lifecycle.ListClaims(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, claims)
}

// AssignClaim handles POST /api/claims/{submitter}/assign
func (h *ClaimHandler) AssignClaim(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	pc, err := h.lifecycle.AssignClaim(r.Context(), signer, r.PathValue("submitter"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pc)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// ApproveClaim handles POST /api/processing/approve
func (h *ClaimHandler) ApproveClaim(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	if err := h.lifecycle.ApproveClaim(r.Context(), signer); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApproveClaimWithEdits handles POST /api/processing/approve-with-edits
func (h *ClaimHandler) ApproveClaimWithEdits(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var edits services.ClaimEdits
	if !decodeJSON(w, r, &edits) {
		return
	}
	if err := h.lifecycle.ApproveClaimWithEdits(r.Context(), signer, edits); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DenyClaim handles POST /api/processing/deny
func (h *ClaimHandler) DenyClaim(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload reasonRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.lifecycle.DenyClaimWithAllRecords(r.Context(), signer, payload.Reason); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DenyClaimWithPatientRecord handles POST /api/processing/deny-with-patient-record
func (h *ClaimHandler) DenyClaimWithPatientRecord(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload reasonRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.lifecycle.CreatePatientRecordAndDenyClaim(r.Context(), signer, payload.Reason); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AppealClaim handles POST /api/processors/{id}/claims/{sequence}/appeal
func (h *ClaimHandler) AppealClaim(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	sequence, err := pathUint(r, "sequence", 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid sequence")
		return
	}
	var payload struct {
		Mint           string `json:"mint"`
		Reason         string `json:"reason"`
		WithAllRecords bool   `json:"with_all_records"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	processor := r.PathValue("id")
	if payload.WithAllRecords {
		err = h.lifecycle.AppealDeniedClaimWithAllRecords(r.Context(), signer, processor, sequence, payload.Mint, payload.Reason)
	} else {
		err = h.lifecycle.AppealDeniedClaimWithOnlyPatientRecord(r.Context(), signer, processor, sequence, payload.Mint, payload.Reason)
	}
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UndenyClaim handles POST /api/processors/{id}/claims/{sequence}/undeny
func (h *ClaimHandler) UndenyClaim(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	sequence, err := pathUint(r, "sequence", 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid sequence")
		return
	}
	var payload struct {
		WithAllRecords bool `json:"with_all_records"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	processor := r.PathValue("id")
	if payload.WithAllRecords {
		err = h.lifecycle.UndenyClaimWithAllRecords(r.Context(), signer, processor, sequence)
	} else {
		err = h.lifecycle.UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords(r.Context(), signer, processor, sequence)
	}
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DenyAppeal handles POST /api/processors/{id}/claims/{sequence}/deny-appeal
func (h *ClaimHandler) DenyAppeal(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	sequence, err := pathUint(r, "sequence", 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid sequence")
		return
	}
	var payload struct {
		Reason         string `json:"reason"`
		WithAllRecords bool   `json:"with_all_records"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	processor := r.PathValue("id")
	if payload.WithAllRecords {
		err = h.lifecycle.DenyAppealedClaimWithAllRecords(r.Context(), signer, processor, sequence, payload.Reason)
	} else {
		err = h.lifecycle.DenyAppealedClaimWithOnlyPatientRecord(r.Context(), signer, processor, sequence, payload.Reason)
	}
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RevokeApproval handles POST /api/processors/{id}/claims/{sequence}/revoke
func (h *ClaimHandler) RevokeApproval(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	sequence, err := pathUint(r, "sequence", 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid sequence")
		return
	}
	var payload reasonRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.lifecycle.RevokeApproval(r.Context(), signer, r.PathValue("id"), sequence, payload.Reason); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MaxDenyPending handles POST /api/claims/{submitter}/max-deny-pending
func (h *ClaimHandler) MaxDenyPending(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload reasonRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.lifecycle.MaxDenyPendingClaim(r.Context(), signer, r.PathValue("submitter"), payload.Reason); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MaxDenyInProgress handles POST /api/claims/{submitter}/max-deny-in-progress
func (h *ClaimHandler) MaxDenyInProgress(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload reasonRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.lifecycle.MaxDenyInProgressClaim(r.Context(), signer, r.PathValue("submitter"), payload.Reason); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DropDenialHammer handles POST /api/claims/purge
func (h *ClaimHandler) DropDenialHammer(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		Submitters []string `json:"submitters"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.hammer.DropDenialHammer(r.Context(), signer, payload.Submitters); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"purged": len(payload.Submitters)})
}

// GetProcessedClaim handles GET /api/processors/{id}/claims/{sequence}
func (h *ClaimHandler) GetProcessedClaim(w http.ResponseWriter, r *http.Request) {
	sequence, err := pathUint(r, "sequence", 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid sequence")
		return
	}
	pc, err := h.lifecycle.GetProcessedClaim(r.Context(), r.PathValue("id"), sequence)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pc)
}
