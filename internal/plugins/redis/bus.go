package redis

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/contracts"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

// expiredKeyPattern matches the store's native key-expiration notification
// channel across databases. Requires notify-keyspace-events to include "Ex".
const expiredKeyPattern = "__keyevent@*__:expired"

type RedisEventBus struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewRedisEventBus(rdb *redis.Client, log *slog.Logger) *RedisEventBus {
	return &RedisEventBus{rdb: rdb, log: log}
}

func (b *RedisEventBus) PublishPresence(ctx context.Context, ev domain.PresenceEvent) error {
	return b.publish(ctx, domain.ChannelPresence, ev)
}

func (b *RedisEventBus) PublishRoomPresence(ctx context.Context, ev domain.RoomPresenceEvent) error {
	return b.publish(ctx, domain.ChannelRoomPresence, ev)
}

func (b *RedisEventBus) PublishChat(ctx context.Context, ev domain.ChatEvent) error {
	return b.publish(ctx, domain.ChannelChat, ev)
}

func (b *RedisEventBus) publish(ctx context.Context, channel string, ev any) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channel, data).Err()
}

// SubscribeEvents consumes the three event channels in a background goroutine
// and dispatches each message to h. A payload that fails to decode is logged
// and skipped; the subscription itself survives.
func (b *RedisEventBus) SubscribeEvents(ctx context.Context, h contracts.EventHandler) error {
	pubsub := b.rdb.Subscribe(ctx, domain.ChannelPresence, domain.ChannelRoomPresence, domain.ChannelChat)
	// Force the SUBSCRIBE to complete so a broken connection surfaces now.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.dispatch(ctx, h, msg)
			}
		}
	}()
	return nil
}

func (b *RedisEventBus) dispatch(ctx context.Context, h contracts.EventHandler, msg *redis.Message) {
	switch msg.Channel {
	case domain.ChannelPresence:
		var ev domain.PresenceEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			b.log.Error("bus - dispatch - bad presence payload", "err", err)
			return
		}
		h.OnPresence(ctx, ev)
	case domain.ChannelRoomPresence:
		var ev domain.RoomPresenceEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			b.log.Error("bus - dispatch - bad room presence payload", "err", err)
			return
		}
		h.OnRoomPresence(ctx, ev)
	case domain.ChannelChat:
		var ev domain.ChatEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			b.log.Error("bus - dispatch - bad chat payload", "err", err)
			return
		}
		h.OnChat(ctx, ev)
	}
}

// SubscribeExpirations consumes the expired-key notification stream. The
// notification carries the expired key as the message payload.
func (b *RedisEventBus) SubscribeExpirations(ctx context.Context, fn func(ctx context.Context, key string)) error {
	// Best effort: managed Redis may forbid CONFIG SET, in which case the
	// operator must enable keyspace notifications server-side.
	if err := b.rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		b.log.Warn("bus - subscribe expirations - config set failed, relying on server config", "err", err)
	}
	pubsub := b.rdb.PSubscribe(ctx, expiredKeyPattern)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(ctx, msg.Payload)
			}
		}
	}()
	return nil
}
