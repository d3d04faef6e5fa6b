package engine

import (
	"context"

	"github.com/arbiter-social/arbiter/moderation/modstore"
)

// Interface for a type that can notify moderators about escalated queue
// items.
type Notifier interface {
	SendEscalation(ctx context.Context, item *modstore.QueueItem) error
}
