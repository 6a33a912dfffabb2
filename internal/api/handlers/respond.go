package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zatekoja/claimsledger/internal/api/middleware"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondWithError writes a JSON error response
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps an application error onto an HTTP status
func respondWithServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		status, message = http.StatusBadRequest, err.Error()
	case apperrors.ErrorTypeUnauthorized:
		status, message = http.StatusForbidden, err.Error()
	case apperrors.ErrorTypeNotFound:
		status, message = http.StatusNotFound, err.Error()
	case apperrors.ErrorTypeConflict, apperrors.ErrorTypeInvalidState:
		status, message = http.StatusConflict, err.Error()
	case apperrors.ErrorTypeQueueDisabled, apperrors.ErrorTypeUnknownPaymentToken:
		status, message = http.StatusUnprocessableEntity, err.Error()
	}

	respondWithError(w, status, message)
}

// requireSigner extracts the signer identity set by the signer middleware,
// writing a 401 when it is absent.
func requireSigner(w http.ResponseWriter, r *http.Request) (string, bool) {
	signer := middleware.SignerFromContext(r.Context())
	if signer == "" {
		respondWithError(w, http.StatusUnauthorized, "missing "+middleware.SignerHeader+" header")
		return "", false
	}
	return signer, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

func pathUint(r *http.Request, name string, bits int) (uint64, error) {
	return strconv.ParseUint(r.PathValue(name), 10, bits)
}
