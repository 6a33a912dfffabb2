package services

import (
	"context"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/providers"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
	"github.com/zatekoja/claimsledger/internal/infrastructure/observability"
	"github.com/zatekoja/claimsledger/pkg/retry"
)

// ArchiveService mirrors finalized processed claims into the durable archive.
// It listens to lifecycle events and copies the current ledger value, so the
// archive converges even when individual saves fail and retry.
type ArchiveService struct {
	ledger   repositories.Ledger
	bus      providers.EventBus
	archive  repositories.ProcessedClaimArchive
	retryCfg retry.Config
}

// NewArchiveService creates a new archive service.
func NewArchiveService(ledger repositories.Ledger, bus providers.EventBus, archive repositories.ProcessedClaimArchive) *ArchiveService {
	return &ArchiveService{
		ledger:   ledger,
		bus:      bus,
		archive:  archive,
		retryCfg: retry.DefaultConfig(),
	}
}

// Run consumes lifecycle events until ctx is cancelled.
func (s *ArchiveService) Run(ctx context.Context) error {
	events, err := s.bus.Subscribe(ctx, providers.EventChannelClaimUpdates)
	if err != nil {
		return err
	}

	logger := observability.LoggerFromContext(ctx)
	logger.Info().Msg("archive service started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			s.handle(ctx, event)
		}
	}
}

func (s *ArchiveService) handle(ctx context.Context, event *entities.ClaimEvent) {
	if event.Processor == "" || !event.Status.Finalized() {
		return
	}

	logger := observability.LoggerFromContext(ctx)

	var pc entities.ProcessedClaim
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		pc, ok = repositories.Get[entities.ProcessedClaim](tx, keys.ProcessedClaim(event.Processor, event.Sequence))
		if !ok {
			// The record may have been trimmed between the event and now.
			return nil
		}
		return nil
	})
	if err != nil || pc.Processor == "" {
		return
	}

	err = retry.Do(ctx, s.retryCfg, func() error {
		return s.archive.Save(ctx, &pc)
	})
	if err != nil {
		logger.Error().Err(err).
			Str("processor", event.Processor).
			Uint64("sequence", event.Sequence).
			Msg("failed to archive processed claim")
		return
	}

	logger.Debug().
		Str("processor", event.Processor).
		Uint64("sequence", event.Sequence).
		Str("status", string(pc.Status)).
		Msg("archived processed claim")
}
