package entities

import (
	"time"
)

// Stats is the singleton protocol-wide counter set. Every counter is
// monotonically non-decreasing and is updated inside the same ledger
// transaction as the lifecycle transition it reflects. Revoking an approval
// leaves ApprovedClaimCount standing; only RevokedApprovalCount moves.
type Stats struct {
	ProcessedClaimCount  uint64    `json:"processed_claim_count"`
	ApprovedClaimCount   uint64    `json:"approved_claim_count"`
	DeniedClaimCount     uint64    `json:"denied_claim_count"`
	UndeniedClaimCount   uint64    `json:"undenied_claim_count"`
	DeniedAppealCount    uint64    `json:"denied_appeal_count"`
	RevokedApprovalCount uint64    `json:"revoked_approval_count"`
	MaxDeniedClaimCount  uint64    `json:"max_denied_claim_count"`
	CreatedAt            time.Time `json:"created_at"`
}

// ClaimQueue is the singleton queue account gating claim submission. It keeps
// its own max-denied tally alongside the protocol stats.
type ClaimQueue struct {
	Enabled             bool      `json:"enabled"`
	MaxDeniedClaimCount uint64    `json:"max_denied_claim_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// FeeTokenEntry registers a payment-token mint accepted for claim submission.
type FeeTokenEntry struct {
	Mint      string    `json:"mint"`
	Decimals  uint8     `json:"decimals"`
	CreatedAt time.Time `json:"created_at"`
}
