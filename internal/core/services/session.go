package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/contracts"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("presence-core")

type ISessionService interface {
	// HandleConnect registers the identity as live: lease, online event,
	// durable record. The caller has already registered the connection.
	HandleConnect(ctx context.Context, userID string) error
	// HandleHeartbeat refreshes the presence lease TTL.
	HandleHeartbeat(ctx context.Context, userID string) error
	// HandleRoom applies a viewing-presence toggle and publishes the event
	// unconditionally, mirroring the request.
	HandleRoom(ctx context.Context, userID string, req domain.RoomRequest) error
	// HandleRelay publishes an inbound chat payload for delivery to the
	// receiver's live connection, wherever it is.
	HandleRelay(ctx context.Context, userID string, raw []byte) error
	// HandleDisconnect runs teardown for c exactly once; a connection that
	// was already replaced by a newer login for the same identity is
	// unregistered without the offline cascade.
	HandleDisconnect(ctx context.Context, c contracts.Client) error
}

type SessionService struct {
	log     *slog.Logger
	hub     contracts.Registry
	leases  contracts.PresenceStore
	bus     contracts.EventBus
	users   domain.UserRepository
	offline *OfflineService
}

func NewSessionService(
	log *slog.Logger,
	hub contracts.Registry,
	leases contracts.PresenceStore,
	bus contracts.EventBus,
	users domain.UserRepository,
	offline *OfflineService,
) *SessionService {
	return &SessionService{
		log:     log,
		hub:     hub,
		leases:  leases,
		bus:     bus,
		users:   users,
		offline: offline,
	}
}

func (s *SessionService) HandleConnect(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "SessionService.HandleConnect", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	if err := s.leases.SetLease(ctx, userID); err != nil {
		// The registry and socket stay authoritative locally; other
		// processes learn of us at the latest on the next heartbeat.
		span.RecordError(err)
		s.log.ErrorContext(ctx, "session - handle connect - set lease failed", "user_id", userID, "err", err)
	}
	if err := s.bus.PublishPresence(ctx, domain.PresenceEvent{
		UserID:    userID,
		IsOnline:  true,
		TimeStamp: time.Now(),
	}); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "session - handle connect - publish online failed", "user_id", userID, "err", err)
	}
	if err := s.users.SetOnline(ctx, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "durable update failed")
		s.log.ErrorContext(ctx, "session - handle connect - durable update failed", "user_id", userID, "err", err)
		return err
	}
	span.SetStatus(codes.Ok, "connected")
	s.log.InfoContext(ctx, "session - handle connect - user online", "user_id", userID)
	return nil
}

func (s *SessionService) HandleHeartbeat(ctx context.Context, userID string) error {
	if err := s.leases.RefreshLease(ctx, userID); err != nil {
		s.log.ErrorContext(ctx, "session - handle heartbeat - refresh lease failed", "user_id", userID, "err", err)
		return err
	}
	s.log.DebugContext(ctx, "session - handle heartbeat - lease refreshed", "user_id", userID)
	return nil
}

func (s *SessionService) HandleRoom(ctx context.Context, userID string, req domain.RoomRequest) error {
	ctx, span := tracer.Start(ctx, "SessionService.HandleRoom", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("chat.room_id", req.RoomID),
		attribute.String("chat.is_present", req.IsPresent),
	))
	defer span.End()

	if req.IsPresent == "true" {
		if err := s.leases.SetRoomLease(ctx, userID, req.FriendID); err != nil {
			span.RecordError(err)
			s.log.ErrorContext(ctx, "session - handle room - set room lease failed", "user_id", userID, "friend_id", req.FriendID, "err", err)
		}
	} else {
		if err := s.leases.DeleteRoomLease(ctx, userID); err != nil {
			span.RecordError(err)
			s.log.ErrorContext(ctx, "session - handle room - delete room lease failed", "user_id", userID, "err", err)
		}
	}

	// Publish mirrors the request regardless of the lease's prior state.
	ev := domain.RoomPresenceEvent{
		UserID:    userID,
		RoomID:    req.RoomID,
		FriendID:  req.FriendID,
		IsPresent: req.IsPresent == "true",
		TimeStamp: time.Now(),
	}
	if ev.RoomID == "" {
		ev.RoomID = domain.RoomID(userID, req.FriendID)
	}
	if err := s.bus.PublishRoomPresence(ctx, ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		s.log.ErrorContext(ctx, "session - handle room - publish failed", "user_id", userID, "room_id", ev.RoomID, "err", err)
		return err
	}
	s.log.InfoContext(ctx, "session - handle room - room presence updated", "user_id", userID, "room_id", ev.RoomID, "is_present", ev.IsPresent)
	return nil
}

func (s *SessionService) HandleRelay(ctx context.Context, userID string, raw []byte) error {
	ctx, span := tracer.Start(ctx, "SessionService.HandleRelay", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("payload_size", len(raw)),
	))
	defer span.End()

	var req domain.MessageRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.ReceiverID == "" {
		span.RecordError(domain.ErrMalformedMessage)
		s.log.WarnContext(ctx, "session - handle relay - malformed message dropped", "user_id", userID)
		return domain.ErrMalformedMessage
	}
	if err := s.bus.PublishChat(ctx, domain.ChatEvent{
		ReceiverID: req.ReceiverID,
		Payload:    json.RawMessage(raw),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		s.log.ErrorContext(ctx, "session - handle relay - publish failed", "user_id", userID, "receiver_id", req.ReceiverID, "err", err)
		return err
	}
	return nil
}

func (s *SessionService) HandleDisconnect(ctx context.Context, c contracts.Client) error {
	userID := c.UserID()
	ctx, span := tracer.Start(ctx, "SessionService.HandleDisconnect", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	if !s.hub.Unregister(c) {
		// A newer connection for the same identity owns the registry entry
		// (or teardown already ran); the leases and events belong to it now.
		s.log.InfoContext(ctx, "session - handle disconnect - connection superseded", "user_id", userID)
		return nil
	}
	s.offline.MarkOffline(ctx, userID)
	s.log.InfoContext(ctx, "session - handle disconnect - user offline", "user_id", userID)
	return nil
}
