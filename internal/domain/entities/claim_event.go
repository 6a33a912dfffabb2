package entities

import (
	"time"
)

// ClaimEventType identifies a lifecycle transition carried on the event bus
type ClaimEventType string

const (
	ClaimEventSubmitted    ClaimEventType = "claim.submitted"
	ClaimEventAssigned     ClaimEventType = "claim.assigned"
	ClaimEventApproved     ClaimEventType = "claim.approved"
	ClaimEventDenied       ClaimEventType = "claim.denied"
	ClaimEventAppealed     ClaimEventType = "claim.appealed"
	ClaimEventUndenied     ClaimEventType = "claim.undenied"
	ClaimEventAppealDenied ClaimEventType = "claim.appeal_denied"
	ClaimEventRevoked      ClaimEventType = "claim.revoked"
	ClaimEventMaxDenied    ClaimEventType = "claim.max_denied"
	ClaimEventPurged       ClaimEventType = "claim.purged"
	ClaimEventEdited       ClaimEventType = "claim.edited"
)

// ClaimEvent is published after a lifecycle transition commits. Publishing is
// best-effort and never part of the transition's atomicity boundary.
type ClaimEvent struct {
	ID         string               `json:"id"`
	Type       ClaimEventType       `json:"type"`
	Submitter  string               `json:"submitter,omitempty"`
	Processor  string               `json:"processor,omitempty"`
	Sequence   uint64               `json:"sequence,omitempty"`
	Status     ProcessedClaimStatus `json:"status,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}
