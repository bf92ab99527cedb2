package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/app/registry"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFriends struct {
	friends map[string][]string
	err     error
}

func (s *stubFriends) ActiveFriendIDs(_ context.Context, friendID string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.friends[friendID], nil
}

type recClient struct {
	id   string
	mu   sync.Mutex
	sent [][]byte
}

func (c *recClient) UserID() string { return c.id }

func (c *recClient) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, data)
	return nil
}

func (c *recClient) Close() {}

func (c *recClient) messages() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.sent...)
}

func TestOnPresencePushesToConnectedFriends(t *testing.T) {
	hub := registry.NewRegistry()
	connected := &recClient{id: "f1"}
	hub.Register(connected)
	// f2 has no local connection; f3 is connected but not a friend of u1.
	outsider := &recClient{id: "f3"}
	hub.Register(outsider)

	f := NewFanout(slog.Default(), hub, &stubFriends{
		friends: map[string][]string{"u1": {"f1", "f2"}},
	})

	ts := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	f.OnPresence(context.Background(), domain.PresenceEvent{
		UserID:    "u1",
		IsOnline:  true,
		TimeStamp: ts,
	})

	msgs := connected.messages()
	require.Len(t, msgs, 1)

	var push domain.PresencePush
	require.NoError(t, json.Unmarshal(msgs[0], &push))
	assert.Equal(t, domain.TypePresenceEvents, push.Type)
	assert.Equal(t, "u1", push.UserID)
	assert.True(t, push.IsOnline)
	assert.True(t, ts.Equal(push.TimeStamp))

	assert.Empty(t, outsider.messages())
}

func TestOnPresenceFriendQueryFailure(t *testing.T) {
	hub := registry.NewRegistry()
	connected := &recClient{id: "f1"}
	hub.Register(connected)

	f := NewFanout(slog.Default(), hub, &stubFriends{err: errors.New("db down")})
	f.OnPresence(context.Background(), domain.PresenceEvent{UserID: "u1", IsOnline: false})

	assert.Empty(t, connected.messages())
}

func TestOnRoomPresencePushesOnlyToNamedFriend(t *testing.T) {
	hub := registry.NewRegistry()
	friend := &recClient{id: "u2"}
	subject := &recClient{id: "u1"}
	hub.Register(friend)
	hub.Register(subject)

	f := NewFanout(slog.Default(), hub, &stubFriends{})
	f.OnRoomPresence(context.Background(), domain.RoomPresenceEvent{
		UserID:    "u1",
		RoomID:    "u1_u2",
		FriendID:  "u2",
		IsPresent: true,
		TimeStamp: time.Now(),
	})

	msgs := friend.messages()
	require.Len(t, msgs, 1)

	var push domain.RoomPresencePush
	require.NoError(t, json.Unmarshal(msgs[0], &push))
	assert.Equal(t, domain.TypeRoom, push.Type)
	assert.Equal(t, "u1_u2", push.RoomID)
	assert.True(t, push.IsPresent)

	// The subject never receives their own room event.
	assert.Empty(t, subject.messages())
}

func TestOnRoomPresenceFriendNotLocal(t *testing.T) {
	f := NewFanout(slog.Default(), registry.NewRegistry(), &stubFriends{})

	// Nothing to assert beyond not panicking: the event is dropped here and
	// handled by whichever process holds u2.
	f.OnRoomPresence(context.Background(), domain.RoomPresenceEvent{
		UserID: "u1", FriendID: "u2", RoomID: "u1_u2",
	})
}

func TestOnChatForwardsVerbatimPayload(t *testing.T) {
	hub := registry.NewRegistry()
	receiver := &recClient{id: "u2"}
	hub.Register(receiver)

	f := NewFanout(slog.Default(), hub, &stubFriends{})
	payload := []byte(`{"type":"message","receiverId":"u2","text":"hi","clientTag":"abc"}`)
	f.OnChat(context.Background(), domain.ChatEvent{ReceiverID: "u2", Payload: payload})

	msgs := receiver.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, payload, msgs[0])
}

func TestOnChatReceiverNotLocal(t *testing.T) {
	hub := registry.NewRegistry()
	other := &recClient{id: "u3"}
	hub.Register(other)

	f := NewFanout(slog.Default(), hub, &stubFriends{})
	f.OnChat(context.Background(), domain.ChatEvent{
		ReceiverID: "u2",
		Payload:    []byte(`{"type":"message","receiverId":"u2"}`),
	})

	assert.Empty(t, other.messages())
}
