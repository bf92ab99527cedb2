package contracts

import (
	"context"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"
)

// EventHandler receives every published event on every process. Handlers
// filter against the local connection registry to make delivery correct.
type EventHandler interface {
	OnPresence(ctx context.Context, ev domain.PresenceEvent)
	OnRoomPresence(ctx context.Context, ev domain.RoomPresenceEvent)
	OnChat(ctx context.Context, ev domain.ChatEvent)
}

// EventBus broadcasts presence and chat events to all process instances and
// exposes the store's native key-expiration notification stream.
type EventBus interface {
	PublishPresence(ctx context.Context, ev domain.PresenceEvent) error
	PublishRoomPresence(ctx context.Context, ev domain.RoomPresenceEvent) error
	PublishChat(ctx context.Context, ev domain.ChatEvent) error

	// SubscribeEvents starts a background consumer that dispatches every
	// event on the presence, room-presence and chat channels to h until
	// ctx is cancelled.
	SubscribeEvents(ctx context.Context, h EventHandler) error
	// SubscribeExpirations starts a background consumer for expired-key
	// notifications; fn receives the raw expired key.
	SubscribeExpirations(ctx context.Context, fn func(ctx context.Context, key string)) error
}
