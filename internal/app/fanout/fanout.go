package fanout

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/contracts"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"
	"github.com/Tech-Naruto/Chat-App-Backend/pkg/logging"
)

// Fanout receives every bus event on this process and delivers the ones that
// matter to locally-held connections. Every process sees every event; the
// local registry filter is what makes delivery correct without topic-per-user
// channels.
type Fanout struct {
	log     *slog.Logger
	hub     contracts.Registry
	friends domain.FriendRepository
}

func NewFanout(log *slog.Logger, hub contracts.Registry, friends domain.FriendRepository) *Fanout {
	return &Fanout{
		log:     log,
		hub:     hub,
		friends: friends,
	}
}

// Run attaches the fan-out to the bus until ctx ends.
func (f *Fanout) Run(ctx context.Context, bus contracts.EventBus) error {
	if err := bus.SubscribeEvents(ctx, f); err != nil {
		return err
	}
	f.log.InfoContext(ctx, "fanout - run - event subscription started")
	return nil
}

// OnPresence pushes the transition to every locally-connected user that has
// the subject in their active friend set.
func (f *Fanout) OnPresence(ctx context.Context, ev domain.PresenceEvent) {
	friendIDs, err := f.friends.ActiveFriendIDs(ctx, ev.UserID)
	if err != nil {
		f.log.ErrorContext(ctx, "fanout - on presence - friend query failed", logging.UserID(ev.UserID), logging.Err(err))
		return
	}
	push := domain.PresencePush{
		Type:      domain.TypePresenceEvents,
		UserID:    ev.UserID,
		IsOnline:  ev.IsOnline,
		TimeStamp: ev.TimeStamp,
	}
	data, _ := json.Marshal(push)
	for _, id := range friendIDs {
		c, ok := f.hub.Get(id)
		if !ok {
			continue
		}
		if err := c.Send(ctx, data); err != nil {
			f.log.WarnContext(ctx, "fanout - on presence - push failed", logging.UserID(ev.UserID), logging.FriendID(id), logging.Err(err))
		}
	}
}

// OnRoomPresence is a 1:1 relation: only the named friend is told.
func (f *Fanout) OnRoomPresence(ctx context.Context, ev domain.RoomPresenceEvent) {
	c, ok := f.hub.Get(ev.FriendID)
	if !ok {
		return
	}
	push := domain.RoomPresencePush{
		Type:      domain.TypeRoom,
		UserID:    ev.UserID,
		RoomID:    ev.RoomID,
		FriendID:  ev.FriendID,
		IsPresent: ev.IsPresent,
		TimeStamp: ev.TimeStamp,
	}
	data, _ := json.Marshal(push)
	if err := c.Send(ctx, data); err != nil {
		f.log.WarnContext(ctx, "fanout - on room presence - push failed", logging.FriendID(ev.FriendID), logging.Err(err))
	}
}

// OnChat forwards the verbatim payload to the receiver if it is connected
// here. An unconnected receiver is a silent drop at this layer; durable
// delivery belongs to the message store.
func (f *Fanout) OnChat(ctx context.Context, ev domain.ChatEvent) {
	c, ok := f.hub.Get(ev.ReceiverID)
	if !ok {
		return
	}
	if err := c.Send(ctx, ev.Payload); err != nil {
		f.log.WarnContext(ctx, "fanout - on chat - push failed", logging.ReceiverID(ev.ReceiverID), logging.Err(err))
	}
}
