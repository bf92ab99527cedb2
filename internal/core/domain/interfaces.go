package domain

import (
	"context"
	"time"
)

// UserRepository mirrors live presence into the durable user record.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	// SetOnline marks the user online and clears last_seen.
	SetOnline(ctx context.Context, id string) error
	// SetOffline marks the user offline and stamps last_seen.
	SetOffline(ctx context.Context, id string, lastSeen time.Time) error
}

// RoomRepository updates the viewer-owned side of a room record.
type RoomRepository interface {
	// SetPresence flips is_present for the row keyed by (roomID, viewer).
	// A missing row is not an error; the room may not have been created yet.
	SetPresence(ctx context.Context, roomID, viewerID string, isPresent bool) error
}

// FriendRepository answers the reverse friend query: which users have the
// given identity in their active friend set.
type FriendRepository interface {
	ActiveFriendIDs(ctx context.Context, friendID string) ([]string, error)
}
