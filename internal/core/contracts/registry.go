package contracts

import "context"

// Registry is the in-process map from identity to live connection. It is
// authoritative only for connections terminated on this process.
type Registry interface {
	// Register stores c as the connection for its user and returns the prior
	// connection for the same identity, if one was registered locally.
	Register(c Client) (prior Client)
	// Unregister removes c only if it is still the registered connection for
	// its user. Returns false when the entry is absent or already replaced.
	Unregister(c Client) bool
	// Get looks up the local connection for a user.
	Get(userID string) (Client, bool)
	// Remove drops whatever connection is registered for userID and returns
	// it. Used by the expiry watcher, which cannot assume a live connection.
	Remove(userID string) Client
}

// Client is the minimal surface the registry and fan-out need to talk to an
// individual WebSocket connection.
type Client interface {
	UserID() string
	// Send enqueues data without blocking. A full buffer disconnects the
	// slow client rather than stalling unrelated traffic.
	Send(ctx context.Context, data []byte) error
	Close()
}
