package domain

import (
	"strings"
	"time"
)

// User is the durable identity record. Presence fields mirror the lease store
// for clients that query over request/response instead of a live socket.
type User struct {
	ID        string
	Username  string
	Email     string
	IsOnline  bool
	LastSeen  *time.Time // nil while the user is online
	CreatedAt time.Time
}

// Room is the durable record of one viewer's side of a two-party conversation.
// FriendID is the viewer that owns the row; RoomID pairs both identities.
type Room struct {
	RoomID    string
	UserID    string
	FriendID  string
	IsPresent bool
	IsBlocked bool
}

// RoomID derives the order-independent identifier for a two-party room.
// Both parties must always compute the same key, so the pair is sorted
// before joining.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return strings.Join([]string{a, b}, "_")
}
