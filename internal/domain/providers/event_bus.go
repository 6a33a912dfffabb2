package providers

import (
	"context"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to claim
// lifecycle events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ClaimEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ClaimEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event streams
const (
	// EventChannelClaimUpdates is the channel carrying every lifecycle event
	EventChannelClaimUpdates = "claims:updates"

	// EventChannelProcessorPrefix is the prefix for processor-specific channels
	EventChannelProcessorPrefix = "claims:processor:"
)

// GetProcessorChannel returns the channel name for a specific processor
func GetProcessorChannel(processor string) string {
	return EventChannelProcessorPrefix + processor
}
