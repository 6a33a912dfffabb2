package repositories

import (
	"context"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
)

// ProcessedClaimArchive persists finalized processed claims outside the
// ledger for reporting and audit. Writes are idempotent per
// (processor, sequence).
type ProcessedClaimArchive interface {
	// Save inserts or refreshes the archived row for a processed claim.
	Save(ctx context.Context, claim *entities.ProcessedClaim) error

	// GetBySequence retrieves an archived processed claim.
	GetBySequence(ctx context.Context, processor string, sequence uint64) (*entities.ProcessedClaim, error)

	// ListByProcessor retrieves archived claims for a processor, newest first.
	ListByProcessor(ctx context.Context, processor string, limit int) ([]*entities.ProcessedClaim, error)
}
