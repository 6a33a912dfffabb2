package entities

import (
	"time"
)

// CeoAccount is the singleton protocol owner. Exactly one owner identity
// exists at any time; ownership is replaced atomically by PassOnCeo.
type CeoAccount struct {
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProcessorAccount is a role authorized to assign and adjudicate claims.
// ProcessedClaimCount is the processor-local sequence: it is the key of the
// next processed claim the processor takes on, and increments exactly once
// per finalize performed on one of its processed claims.
type ProcessorAccount struct {
	Identity            string    `json:"identity"`
	IsActive            bool      `json:"is_active"`
	IsSuperAdmin        bool      `json:"is_super_admin"`
	ProcessedClaimCount uint64    `json:"processed_claim_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// SubmitterAccount is a per-wallet record for a claim submitter. PatientCount
// is the dense index of the next patient sub-record.
type SubmitterAccount struct {
	Identity     string    `json:"identity"`
	PatientCount uint8     `json:"patient_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// PatientAccount is a patient sub-record of a submitter. Name fields are
// immutable after creation.
type PatientAccount struct {
	Submitter string    `json:"submitter"`
	Index     uint8     `json:"index"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}
