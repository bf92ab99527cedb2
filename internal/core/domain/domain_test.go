package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomID(t *testing.T) {
	t.Run("OrderIndependent", func(t *testing.T) {
		assert.Equal(t, RoomID("alice", "bob"), RoomID("bob", "alice"))
	})

	t.Run("SortedPair", func(t *testing.T) {
		assert.Equal(t, "alice_bob", RoomID("bob", "alice"))
		assert.Equal(t, "alice_bob", RoomID("alice", "bob"))
	})

	t.Run("ObjectIDStyleIdentifiers", func(t *testing.T) {
		a := "5f8d0a4b9d1e8b0017a1b1a1"
		b := "5f8d0a4b9d1e8b0017a1b1a2"
		assert.Equal(t, a+"_"+b, RoomID(b, a))
	})
}

func TestEnvelopeDecoding(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"type":"heartbeat"}`), &env))
	assert.Equal(t, TypeHeartbeat, env.Type)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"message","receiverId":"u2","text":"hi"}`), &env))
	assert.Equal(t, TypeMessage, env.Type)
}

func TestRoomRequestKeepsWireString(t *testing.T) {
	raw := `{"type":"room","userId":"u1","friendId":"u2","roomId":"u1_u2","isPresent":"true"}`
	var req RoomRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Equal(t, "true", req.IsPresent)
	assert.Equal(t, "u1_u2", req.RoomID)
}

func TestPresencePushShape(t *testing.T) {
	push := PresencePush{Type: TypePresenceEvents, UserID: "u1", IsOnline: true}
	data, err := json.Marshal(push)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"presence-events"`)
	assert.Contains(t, string(data), `"userId":"u1"`)
	assert.Contains(t, string(data), `"isOnline":true`)
	assert.Contains(t, string(data), `"timeStamp"`)
}
