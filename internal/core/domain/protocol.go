package domain

import (
	"encoding/json"
	"time"
)

// Inbound message kinds.
const (
	TypeHeartbeat = "heartbeat"
	TypeMessage   = "message"
	TypeRoom      = "room"
)

// Outbound push kinds. Room pushes reuse TypeRoom.
const (
	TypePresenceEvents = "presence-events"
)

// WebSocket close codes for handshake rejection. No state is mutated when a
// connection is closed with one of these.
const (
	CloseNoCredential      = 4001
	CloseCredentialExpired = 4002
	CloseCredentialInvalid = 4003
)

// Event bus channels.
const (
	ChannelPresence     = "presence-events"
	ChannelRoomPresence = "room-presence-events"
	ChannelChat         = "chat-events"
)

// Presence store key prefixes.
const (
	PresenceKeyPrefix     = "presence:"
	RoomPresenceKeyPrefix = "room-presence:"
)

// Envelope resolves the kind of an inbound message before full decoding.
type Envelope struct {
	Type string `json:"type"`
}

// RoomRequest is the inbound viewing-presence toggle. IsPresent stays a wire
// string ("true"/"false") to match the client protocol.
type RoomRequest struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	FriendID  string `json:"friendId"`
	RoomID    string `json:"roomId"`
	IsPresent string `json:"isPresent"`
}

// MessageRequest carries only the routing field of an inbound chat message.
// The full raw payload is relayed verbatim to the receiver.
type MessageRequest struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId"`
}

// PresenceEvent is published on every online/offline transition.
// Consumers treat it as last-write-wins per user.
type PresenceEvent struct {
	UserID    string    `json:"userId"`
	IsOnline  bool      `json:"isOnline"`
	TimeStamp time.Time `json:"timeStamp"`
}

// RoomPresenceEvent announces that UserID started or stopped viewing the
// conversation with FriendID.
type RoomPresenceEvent struct {
	UserID    string    `json:"userId"`
	RoomID    string    `json:"roomId"`
	FriendID  string    `json:"friendId"`
	IsPresent bool      `json:"isPresent"`
	TimeStamp time.Time `json:"timeStamp"`
}

// ChatEvent wraps a verbatim inbound chat payload for cross-process delivery.
// Only the process holding the receiver's live connection acts on it.
type ChatEvent struct {
	ReceiverID string          `json:"receiverId"`
	Payload    json.RawMessage `json:"payload"`
}

// PresencePush is the typed notification sent to connected friends.
type PresencePush struct {
	Type      string    `json:"type"` // always "presence-events"
	UserID    string    `json:"userId"`
	IsOnline  bool      `json:"isOnline"`
	TimeStamp time.Time `json:"timeStamp"`
}

// RoomPresencePush is delivered only to the friend the event concerns.
type RoomPresencePush struct {
	Type      string    `json:"type"` // always "room"
	UserID    string    `json:"userId"`
	RoomID    string    `json:"roomId"`
	FriendID  string    `json:"friendId"`
	IsPresent bool      `json:"isPresent"`
	TimeStamp time.Time `json:"timeStamp"`
}
