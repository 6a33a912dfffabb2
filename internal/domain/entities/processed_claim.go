package entities

import (
	"time"
)

// ProcessedClaimStatus is the adjudication state of a processed claim
type ProcessedClaimStatus string

const (
	// ProcessedStatusInProgress means the claim is assigned but not finalized
	ProcessedStatusInProgress ProcessedClaimStatus = "IN_PROGRESS"

	// ProcessedStatusApproved means the claim was approved and funds released
	ProcessedStatusApproved ProcessedClaimStatus = "APPROVED"

	// ProcessedStatusDenied means the claim was denied; the submitter may appeal
	ProcessedStatusDenied ProcessedClaimStatus = "DENIED"

	// ProcessedStatusAppealed means the submitter appealed a denial
	ProcessedStatusAppealed ProcessedClaimStatus = "APPEALED"

	// ProcessedStatusUndenied means an appeal overturned the denial
	ProcessedStatusUndenied ProcessedClaimStatus = "UNDENIED"

	// ProcessedStatusAppealDenied means the appeal was denied; terminal
	ProcessedStatusAppealDenied ProcessedClaimStatus = "APPEAL_DENIED"

	// ProcessedStatusMaxDenied means an administrative fast-path denial; terminal
	ProcessedStatusMaxDenied ProcessedClaimStatus = "MAX_DENIED"

	// ProcessedStatusRevoked means a prior approval was revoked. The record
	// stays editable but no further lifecycle edge leaves it.
	ProcessedStatusRevoked ProcessedClaimStatus = "REVOKED"
)

// Finalized reports whether the status is past its first finalize edge,
// i.e. the processor-local sequence for it has been consumed.
func (s ProcessedClaimStatus) Finalized() bool {
	return s != ProcessedStatusInProgress
}

// ProcessedClaim is the working record of a claim once a processor has taken
// ownership, keyed by (processor, processor-local sequence). Denial, appeal
// and revocation reasons are append-only history.
type ProcessedClaim struct {
	Processor string `json:"processor"`
	Sequence  uint64 `json:"sequence"`

	Claim Claim `json:"claim"`

	Status        ProcessedClaimStatus `json:"status"`
	DenialReasons []string             `json:"denial_reasons,omitempty"`
	AppealReasons []string             `json:"appeal_reasons,omitempty"`

	AssignedAt  time.Time `json:"assigned_at"`
	FinalizedAt time.Time `json:"finalized_at,omitempty"`
	EditedAt    time.Time `json:"edited_at,omitempty"`
}
