package handlers

import (
	"net/http"

	"github.com/zatekoja/claimsledger/internal/application/services"
)

// RecordsHandler exposes the registry and master records: submitters,
// patients, patient history records, state directories, hospitals and
// insurance companies.
type RecordsHandler struct {
	registry *services.RegistryService
	records  *services.RecordsService
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(registry *services.RegistryService, records *services.RecordsService) *RecordsHandler {
	return &RecordsHandler{
		registry: registry,
		records:  records,
	}
}

// CreateSubmitter handles POST /api/submitters
func (h *RecordsHandler) CreateSubmitter(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	if err := h.registry.CreateSubmitter(r.Context(), signer); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// CreatePatient handles POST /api/patients
func (h *RecordsHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		Index     uint8  `json:"index"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.registry.CreatePatient(r.Context(), signer, payload.Index, payload.FirstName, payload.LastName); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// GetSubmitter handles GET /api/submitters/{id}
func (h *RecordsHandler) GetSubmitter(w http.ResponseWriter, r *http.Request) {
	submitter, err := h.registry.GetSubmitter(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, submitter)
}

// GetPatient handles GET /api/submitters/{id}/patients/{index}
func (h *RecordsHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	index, err := pathUint(r, "index", 8)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid patient index")
		return
	}
	patient, err := h.registry.GetPatient(r.Context(), r.PathValue("id"), uint8(index))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, patient)
}

// GetPatientRecord handles GET /api/submitters/{id}/patient-records/{index}
func (h *RecordsHandler) GetPatientRecord(w http.ResponseWriter, r *http.Request) {
	index, err := pathUint(r, "index", 8)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid patient index")
		return
	}
	record, err := h.records.GetPatientRecord(r.Context(), r.PathValue("id"), uint8(index))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

// CreatePatientRecord handles POST /api/processing/patient-record
func (h *RecordsHandler) CreatePatientRecord(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	if err := h.records.CreatePatientRecord(r.Context(), signer); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// CreateMasterRecords handles POST /api/processing/master-records
func (h *RecordsHandler) CreateMasterRecords(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	if err := h.records.CreateHospitalAndInsuranceCompanyRecords(r.Context(), signer); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// UpdateHospitalIndex handles PATCH /api/processing/hospital-index
func (h *RecordsHandler) UpdateHospitalIndex(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		HospitalIndex uint32 `json:"hospital_index"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.records.UpdateClaimHospitalIndex(r.Context(), signer, payload.HospitalIndex); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateInsuranceIndex handles PATCH /api/processing/insurance-index
func (h *RecordsHandler) UpdateInsuranceIndex(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		InsuranceCompanyIndex uint32 `json:"insurance_company_index"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.records.UpdateClaimInsuranceCompanyIndex(r.Context(), signer, payload.InsuranceCompanyIndex); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditProcessedClaim handles PATCH /api/processors/{id}/claims/{sequence}
func (h *RecordsHandler) EditProcessedClaim(w http.ResponseWriter, r *http.Request) {
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
		services.ProcessedClaimEdits
		WithAllRecords bool `json:"with_all_records"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	processor := r.PathValue("id")
	if payload.WithAllRecords {
		err = h.records.EditProcessedClaimAndAllRecords(r.Context(), signer, processor, sequence, payload.ProcessedClaimEdits)
	} else {
		err = h.records.EditProcessedClaimAndPatientRecord(r.Context(), signer, processor, sequence, payload.ProcessedClaimEdits)
	}
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateStateAccount handles POST /api/admin/states
func (h *RecordsHandler) CreateStateAccount(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		CountryIndex uint16 `json:"country_index"`
		StateIndex   uint16 `json:"state_index"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.records.CreateStateAccount(r.Context(), signer, payload.CountryIndex, payload.StateIndex); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// CreateHospital handles POST /api/admin/hospitals
func (h *RecordsHandler) CreateHospital(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var input services.CreateHospitalInput
	if !decodeJSON(w, r, &input) {
		return
	}
	record, err := h.records.CreateHospital(r.Context(), signer, input)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, record)
}

// CreateInsuranceCompany handles POST /api/admin/insurance-companies
func (h *RecordsHandler) CreateInsuranceCompany(w http.ResponseWriter, r *http.Request) {
	signer, ok := requireSigner(w, r)
	if !ok {
		return
	}
	var payload struct {
		Index uint32 `json:"index"`
		Name  string `json:"name"`
		Note  string `json:"note"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.records.CreateInsuranceCompany(r.Context(), signer, payload.Index, payload.Name, payload.Note); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// GetHospital handles GET /api/hospitals/{country}/{state}/{index}
func (h *RecordsHandler) GetHospital(w http.ResponseWriter, r *http.Request) {
	country, err := pathUint(r, "country", 16)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid country index")
		return
	}
	state, err := pathUint(r, "state", 16)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid state index")
		return
	}
	index, err := pathUint(r, "index", 32)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid hospital index")
		return
	}

	record, err := h.records.GetHospital(r.Context(), uint16(country), uint16(state), uint32(index))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

// GetInsuranceCompany handles GET /api/insurance-companies/{index}
func (h *RecordsHandler) GetInsuranceCompany(w http.ResponseWriter, r *http.Request) {
	index, err := pathUint(r, "index", 32)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid insurance company index")
		return
	}
	record, err := h.records.GetInsuranceCompany(r.Context(), uint32(index))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}
