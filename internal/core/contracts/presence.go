package contracts

import "context"

// PresenceStore is the shared lease store. A presence lease existing means
// "this identity has a live connection on some process"; the store expires it
// on its own when heartbeats stop.
type PresenceStore interface {
	// SetLease writes presence:<userID> with the configured TTL.
	SetLease(ctx context.Context, userID string) error
	// RefreshLease resets the TTL on an existing lease. A vanished lease is
	// not an error; the expiry cascade already handled it.
	RefreshLease(ctx context.Context, userID string) error
	// DeleteLease removes the lease. Deleting an absent lease is a no-op.
	DeleteLease(ctx context.Context, userID string) error

	// SetRoomLease records which friend userID is currently viewing.
	// At most one per user; a second set overwrites the first.
	SetRoomLease(ctx context.Context, userID, friendID string) error
	// GetRoomLease returns the viewed friend id, or "" when none is set.
	GetRoomLease(ctx context.Context, userID string) (string, error)
	// DeleteRoomLease clears the viewing record. Absent is a no-op.
	DeleteRoomLease(ctx context.Context, userID string) error
}
