package marketplace

import (
	"context"

	"github.com/ecaro09/tasko-sub000/internal/domain"
)

// Publisher delivers marketplace events to downstream subscribers (chat
// room opening, push notifications, user stats). Delivery is best-effort:
// services log publish failures but never fail the command over them.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// NopPublisher drops every event. Used when no queue is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.Event) error { return nil }
