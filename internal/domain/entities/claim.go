package entities

import (
	"time"
)

// ClaimStatus is the lifecycle state of a queued claim
type ClaimStatus string

const (
	// ClaimStatusQueued means the claim is waiting for a processor
	ClaimStatusQueued ClaimStatus = "QUEUED"

	// ClaimStatusAssigned means a processor has taken ownership
	ClaimStatusAssigned ClaimStatus = "ASSIGNED"
)

// Field length limits enforced on submission and edits, counted in
// characters, not bytes.
const (
	MaxPatientNameLen   = 52
	MaxHospitalNameLen  = 50
	MaxAddressLen       = 100
	MaxCityLen          = 40
	MaxInvoiceNumberLen = 20
	MaxNoteLen          = 144
	MaxAilmentLen       = 45
	MaxInsuranceNameLen = 50
)

// Claim is a submitted reimbursement request awaiting adjudication. It is
// keyed by its submitter; a submitter has at most one open claim at a time.
// The hospital and insurance fields are a caller-supplied snapshot used to
// materialize master records lazily.
type Claim struct {
	Submitter                 string      `json:"submitter"`
	PatientIndex              uint8       `json:"patient_index"`
	Mint                      string      `json:"mint"`
	CountryIndex              uint16      `json:"country_index"`
	StateIndex                uint16      `json:"state_index"`
	HospitalIndex             uint32      `json:"hospital_index"`
	HospitalType              uint8       `json:"hospital_type"`
	HospitalName              string      `json:"hospital_name"`
	HospitalAddress           string      `json:"hospital_address"`
	HospitalCity              string      `json:"hospital_city"`
	HospitalZipCode           uint32      `json:"hospital_zip_code"`
	HospitalPhoneNumber       uint64      `json:"hospital_phone_number"`
	HospitalBillInvoiceNumber string      `json:"hospital_bill_invoice_number"`
	Note                      string      `json:"note"`
	Amount                    uint64      `json:"amount"`
	Ailment                   string      `json:"ailment"`
	InsuranceCompanyIndex     uint32      `json:"insurance_company_index"`
	InsuranceCompanyName      string      `json:"insurance_company_name"`
	Status                    ClaimStatus `json:"status"`
	Processor                 string      `json:"processor,omitempty"`
	SubmittedAt               time.Time   `json:"submitted_at"`
}
