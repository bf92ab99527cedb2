package watcher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/contracts"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/services"
	"github.com/Tech-Naruto/Chat-App-Backend/pkg/logging"
)

// ExpiryWatcher converts silently-expired presence leases into explicit
// offline events. It is the backstop for process crashes: when a process dies
// without running teardown, the lease TTL is the only signal of death, and
// this watcher keeps the bus and the durable records consistent with it.
type ExpiryWatcher struct {
	log     *slog.Logger
	bus     contracts.EventBus
	hub     contracts.Registry
	offline *services.OfflineService
}

func NewExpiryWatcher(
	log *slog.Logger,
	bus contracts.EventBus,
	hub contracts.Registry,
	offline *services.OfflineService,
) *ExpiryWatcher {
	return &ExpiryWatcher{
		log:     log,
		bus:     bus,
		hub:     hub,
		offline: offline,
	}
}

// Run subscribes to the store's expired-key notifications until ctx ends.
func (w *ExpiryWatcher) Run(ctx context.Context) error {
	if err := w.bus.SubscribeExpirations(ctx, w.OnExpired); err != nil {
		return err
	}
	w.log.InfoContext(ctx, "watcher - run - expiry subscription started")
	return nil
}

// OnExpired handles one expired key. Only the presence keyspace matters;
// room leases carry no TTL and chat keys are someone else's concern.
func (w *ExpiryWatcher) OnExpired(ctx context.Context, key string) {
	if !strings.HasPrefix(key, domain.PresenceKeyPrefix) {
		return
	}
	userID := strings.TrimPrefix(key, domain.PresenceKeyPrefix)
	if userID == "" {
		return
	}
	w.log.InfoContext(ctx, "watcher - on expired - presence lease expired", logging.UserID(userID))

	// Defensive: the owning process should already have dropped the entry,
	// but a connection that stopped heartbeating may still be registered
	// here. It is dead by definition; close it out.
	if stale := w.hub.Remove(userID); stale != nil {
		stale.Close()
	}
	w.offline.MarkOffline(ctx, userID)
}
