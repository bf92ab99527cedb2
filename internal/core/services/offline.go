package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/contracts"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OfflineService is the single implementation of the offline cascade, shared
// by the gateway teardown path and the expiry watcher so both stay identical:
// publish offline, delete the presence lease, clear any room lease (with its
// own event and durable update), then mirror the transition into the durable
// user record.
type OfflineService struct {
	log       *slog.Logger
	leases    contracts.PresenceStore
	bus       contracts.EventBus
	users     domain.UserRepository
	rooms     domain.RoomRepository
	txManager contracts.TxManager
}

func NewOfflineService(
	log *slog.Logger,
	leases contracts.PresenceStore,
	bus contracts.EventBus,
	users domain.UserRepository,
	rooms domain.RoomRepository,
	txManager contracts.TxManager,
) *OfflineService {
	return &OfflineService{
		log:       log,
		leases:    leases,
		bus:       bus,
		users:     users,
		rooms:     rooms,
		txManager: txManager,
	}
}

// MarkOffline runs the full offline cascade for userID. Every step tolerates
// the previous one having already happened: deletes are no-ops on absent keys
// and a missing room lease skips the room branch entirely, so invoking the
// cascade against already-clean state mutates nothing it shouldn't.
func (s *OfflineService) MarkOffline(ctx context.Context, userID string) {
	ctx, span := tracer.Start(ctx, "OfflineService.MarkOffline", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()
	now := time.Now()

	if err := s.bus.PublishPresence(ctx, domain.PresenceEvent{
		UserID:    userID,
		IsOnline:  false,
		TimeStamp: now,
	}); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "offline - mark offline - publish offline failed", "user_id", userID, "err", err)
	}
	if err := s.leases.DeleteLease(ctx, userID); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "offline - mark offline - delete lease failed", "user_id", userID, "err", err)
	}

	friendID := s.clearRoomLease(ctx, userID)

	if err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if friendID != "" {
			roomID := domain.RoomID(userID, friendID)
			if err := s.rooms.SetPresence(txCtx, roomID, userID, false); err != nil {
				return err
			}
		}
		return s.users.SetOffline(txCtx, userID, now)
	}); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "offline - mark offline - durable update failed", "user_id", userID, "err", err)
		return
	}
	s.log.InfoContext(ctx, "offline - mark offline - cascade complete", "user_id", userID)
}

// clearRoomLease deletes the room lease if one exists, publishes the matching
// not-present event and returns the friend id that was being viewed.
func (s *OfflineService) clearRoomLease(ctx context.Context, userID string) string {
	friendID, err := s.leases.GetRoomLease(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "offline - clear room lease - read failed", "user_id", userID, "err", err)
		return ""
	}
	if friendID == "" {
		return ""
	}
	if err := s.leases.DeleteRoomLease(ctx, userID); err != nil {
		s.log.ErrorContext(ctx, "offline - clear room lease - delete failed", "user_id", userID, "err", err)
	}
	if err := s.bus.PublishRoomPresence(ctx, domain.RoomPresenceEvent{
		UserID:    userID,
		RoomID:    domain.RoomID(userID, friendID),
		FriendID:  friendID,
		IsPresent: false,
		TimeStamp: time.Now(),
	}); err != nil {
		s.log.ErrorContext(ctx, "offline - clear room lease - publish failed", "user_id", userID, "friend_id", friendID, "err", err)
	}
	return friendID
}
