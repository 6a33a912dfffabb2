package entities

import (
	"time"
)

// StateAccount is the per-(country, state) directory. HospitalCount is the
// dense index of the next hospital record in the state.
type StateAccount struct {
	CountryIndex  uint16    `json:"country_index"`
	StateIndex    uint16    `json:"state_index"`
	HospitalCount uint32    `json:"hospital_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// HospitalRecord is a hospital master record, keyed by
// (country, state, hospital index). Created either directly by the CEO or
// lazily from a referencing claim's snapshot; coordinates are only known on
// the direct path.
type HospitalRecord struct {
	CountryIndex  uint16    `json:"country_index"`
	StateIndex    uint16    `json:"state_index"`
	HospitalIndex uint32    `json:"hospital_index"`
	Type          uint8     `json:"type"`
	Longitude     float64   `json:"longitude,omitempty"`
	Latitude      float64   `json:"latitude,omitempty"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	ZipCode       uint32    `json:"zip_code"`
	PhoneNumber   uint64    `json:"phone_number"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// InsuranceCompanyRecord is an insurance company master record, keyed by its
// insurance index.
type InsuranceCompanyRecord struct {
	Index     uint32    `json:"index"`
	Name      string    `json:"name"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PatientRecord is the patient history record derived from a processed claim
// and its patient account. It is keyed by (submitter, patient index) and
// created once; later claims for the same patient leave the original linkage
// in place.
type PatientRecord struct {
	Submitter    string    `json:"submitter"`
	PatientIndex uint8     `json:"patient_index"`
	Processor    string    `json:"processor"`
	Sequence     uint64    `json:"sequence"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}
