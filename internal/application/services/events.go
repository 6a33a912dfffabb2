package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/providers"
	"github.com/zatekoja/claimsledger/internal/infrastructure/observability"
)

// eventPublisher emits lifecycle events after a ledger transaction has
// committed. Publishing is best-effort: a publish failure is logged and never
// surfaced to the caller, and the bus may be absent entirely.
type eventPublisher struct {
	bus providers.EventBus
}

func newEventPublisher(bus providers.EventBus) *eventPublisher {
	return &eventPublisher{bus: bus}
}

func (p *eventPublisher) publish(ctx context.Context, event *entities.ClaimEvent) {
	if p == nil || p.bus == nil {
		return
	}

	event.ID = uuid.New().String()
	event.OccurredAt = time.Now().UTC()

	logger := observability.LoggerFromContext(ctx)
	if err := p.bus.Publish(ctx, providers.EventChannelClaimUpdates, event); err != nil {
		logger.Warn().Err(err).Str("event_type", string(event.Type)).Msg("failed to publish claim event")
	}

	if event.Processor != "" {
		channel := providers.GetProcessorChannel(event.Processor)
		if err := p.bus.Publish(ctx, channel, event); err != nil {
			logger.Warn().Err(err).Str("channel", channel).Msg("failed to publish processor event")
		}
	}
}
