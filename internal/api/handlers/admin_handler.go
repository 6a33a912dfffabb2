package handlers

import (
	"net/http"

	"github.com/zatekoja/claimsledger/internal/application/services"
)

// AdminHandler exposes protocol administration: singleton initialization,
// ownership transfer, the fee token registry and processor management.
type AdminHandler struct {
	admin *services.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// InitializeCeo handles POST /api/admin/ceo
func (h *AdminHandler) InitializeCeo(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	if err := h.admin.InitializeCeo(r.Context(), signer); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"owner": signer})
}

// PassOnCeo handles POST /api/admin/ceo/transfer
func (h *AdminHandler) PassOnCeo(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		NewOwner string `json:"new_owner"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.admin.PassOnCeo(r.Context(), signer, payload.NewOwner); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"owner": payload.NewOwner})
}

// InitializeStats handles POST /api/admin/stats
func (h *AdminHandler) InitializeStats(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	if err := h.admin.InitializeStats(r.Context(), signer); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// InitializeQueue handles POST /api/admin/queue
func (h *AdminHandler) InitializeQueue(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	if err := h.admin.InitializeQueue(r.Context(), signer); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// SetQueueEnabled handles PATCH /api/admin/queue
func (h *AdminHandler) SetQueueEnabled(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.admin.SetQueueEnabled(r.Context(), signer, payload.Enabled); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddFeeToken handles POST /api/admin/fee-tokens
func (h *AdminHandler) AddFeeToken(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		Mint     string `json:"mint"`
		Decimals uint8  `json:"decimals"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.admin.AddFeeToken(r.Context(), signer, payload.Mint, payload.Decimals); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemoveFeeToken handles DELETE /api/admin/fee-tokens/{mint}
func (h *AdminHandler) RemoveFeeToken(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	if err := h.admin.RemoveFeeToken(r.Context(), signer, r.PathValue("mint")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFeeTokens handles GET /api/fee-tokens
func (h *AdminHandler) ListFeeTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.admin.ListFeeTokens(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tokens)
}

// CreateProcessor handles POST /api/admin/processors
func (h *AdminHandler) CreateProcessor(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		Identity string `json:"identity"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.admin.CreateProcessor(r.Context(), signer, payload.Identity); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// UpdateProcessor handles PATCH /api/admin/processors/{id}
func (h *AdminHandler) UpdateProcessor(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		IsActive     *bool `json:"is_active"`
		IsSuperAdmin *bool `json:"is_super_admin"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	identity := r.PathValue("id")
	if payload.IsActive != nil {
		if err := h.admin.SetProcessorActive(r.Context(), signer, identity, *payload.IsActive); err != nil {
			respondWithServiceError(w, err)
			return
		}
	}
	if payload.IsSuperAdmin != nil {
		if err := h.admin.SetProcessorAdmin(r.Context(), signer, identity, *payload.IsSuperAdmin); err != nil {
			respondWithServiceError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProcessor handles GET /api/processors/{id}
func (h *AdminHandler) GetProcessor(w http.ResponseWriter, r *http.Request) {
	proc, err := h.admin.GetProcessor(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, proc)
}

// GetStats handles GET /api/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetStats(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// GetQueue handles GET /api/queue
func (h *AdminHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.admin.GetQueue(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, queue)
}
