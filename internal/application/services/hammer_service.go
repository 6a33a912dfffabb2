package services

import (
	"context"
	"fmt"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/providers"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
	"github.com/zatekoja/claimsledger/pkg/config"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// HammerService purges batches of queued claims in bulk. A batch is all or
// nothing: one ineligible member fails the whole purge and no claim is
// removed.
type HammerService struct {
	ledger     repositories.Ledger
	events     *eventPublisher
	batchLimit int
}

// NewHammerService creates a new denial hammer service. The event bus may be
// nil.
func NewHammerService(ledger repositories.Ledger, bus providers.EventBus, cfg config.EngineConfig) *HammerService {
	return &HammerService{
		ledger:     ledger,
		events:     newEventPublisher(bus),
		batchLimit: cfg.DenialHammerBatchLimit,
	}
}

// DropDenialHammer removes the queued claims of the given submitters. Every
// member must be an existing, still-queued claim or the batch fails whole.
func (s *HammerService) DropDenialHammer(ctx context.Context, signer string, submitters []string) error {
	if len(submitters) == 0 {
		return apperrors.NewValidationError("at least one claim is required")
	}
	if len(submitters) > s.batchLimit {
		return apperrors.NewValidationError(fmt.Sprintf("a batch may purge at most %d claims", s.batchLimit))
	}

	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireAdmin(tx, signer); err != nil {
			return err
		}

		addrs := make([]keys.Address, 0, len(submitters))
		for _, submitter := range submitters {
			addr := keys.Claim(submitter)
			claim, ok := repositories.Get[entities.Claim](tx, addr)
			if !ok {
				return apperrors.NewNotFoundError(fmt.Sprintf("no claim found for submitter %s", submitter))
			}
			if claim.Status != entities.ClaimStatusQueued {
				return apperrors.NewInvalidStateError(fmt.Sprintf("claim for submitter %s is assigned", submitter))
			}
			addrs = append(addrs, addr)
		}

		for _, addr := range addrs {
			tx.Delete(addr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, submitter := range submitters {
		s.events.publish(ctx, &entities.ClaimEvent{
			Type:      entities.ClaimEventPurged,
			Submitter: submitter,
		})
	}
	return nil
}
