package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/app/registry"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/contracts"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handshake-test-secret"

type knownUsers struct{}

func (knownUsers) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if id == "u1" {
		return &domain.User{ID: id, Username: "alice"}, nil
	}
	return nil, domain.ErrUserNotFound
}

func (knownUsers) SetOnline(context.Context, string) error { return nil }

func (knownUsers) SetOffline(context.Context, string, time.Time) error { return nil }

// spySession records session calls so the test can observe the connection
// lifecycle without a real store behind it.
type spySession struct {
	mu          sync.Mutex
	connects    []string
	heartbeats  []string
	disconnects []string
}

func (s *spySession) HandleConnect(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connects = append(s.connects, userID)
	return nil
}

func (s *spySession) HandleHeartbeat(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats = append(s.heartbeats, userID)
	return nil
}

func (s *spySession) HandleRoom(context.Context, string, domain.RoomRequest) error { return nil }

func (s *spySession) HandleRelay(context.Context, string, []byte) error { return nil }

func (s *spySession) HandleDisconnect(_ context.Context, c contracts.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects = append(s.disconnects, c.UserID())
	return nil
}

func (s *spySession) snapshot() (connects, heartbeats, disconnects []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.connects...),
		append([]string(nil), s.heartbeats...),
		append([]string(nil), s.disconnects...)
}

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestServer(t *testing.T) (*httptest.Server, *spySession) {
	t.Helper()
	hub := registry.NewRegistry()
	tokens := services.NewTokenService(slog.Default(), testSecret, knownUsers{})
	session := &spySession{}
	handler := NewWSHandler(hub, tokens, session)

	srv := httptest.NewServer(http.HandlerFunc(handler.Handler))
	t.Cleanup(srv.Close)
	return srv, session
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readCloseCode waits for the server to close the connection and returns the
// close code it sent.
func readCloseCode(t *testing.T, conn *websocket.Conn) int {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	return closeErr.Code
}

func cookieHeader(token string) http.Header {
	h := http.Header{}
	h.Set("Cookie", "accessToken="+token)
	return h
}

func TestHandshakeNoCredential(t *testing.T) {
	srv, session := newTestServer(t)

	conn := dial(t, srv, nil)
	assert.Equal(t, domain.CloseNoCredential, readCloseCode(t, conn))

	connects, _, _ := session.snapshot()
	assert.Empty(t, connects)
}

func TestHandshakeExpiredToken(t *testing.T) {
	srv, _ := newTestServer(t)

	token := signToken(t, "u1", time.Now().Add(-time.Hour))
	conn := dial(t, srv, cookieHeader(token))
	assert.Equal(t, domain.CloseCredentialExpired, readCloseCode(t, conn))
}

func TestHandshakeInvalidToken(t *testing.T) {
	srv, _ := newTestServer(t)

	conn := dial(t, srv, cookieHeader("not-a-jwt"))
	assert.Equal(t, domain.CloseCredentialInvalid, readCloseCode(t, conn))
}

func TestHandshakeUnknownSubject(t *testing.T) {
	srv, _ := newTestServer(t)

	token := signToken(t, "ghost", time.Now().Add(time.Hour))
	conn := dial(t, srv, cookieHeader(token))
	assert.Equal(t, domain.CloseCredentialInvalid, readCloseCode(t, conn))
}

func TestHandshakeBearerHeaderFallback(t *testing.T) {
	srv, session := newTestServer(t)

	token := signToken(t, "u1", time.Now().Add(time.Hour))
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	conn := dial(t, srv, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)))
	require.Eventually(t, func() bool {
		connects, heartbeats, _ := session.snapshot()
		return len(connects) == 1 && len(heartbeats) == 1
	}, 3*time.Second, 20*time.Millisecond)

	connects, _, _ := session.snapshot()
	assert.Equal(t, []string{"u1"}, connects)
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	srv, session := newTestServer(t)

	token := signToken(t, "u1", time.Now().Add(time.Hour))
	conn := dial(t, srv, cookieHeader(token))

	// Garbage is dropped without closing the connection; the next
	// well-formed frame still goes through.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)))

	require.Eventually(t, func() bool {
		_, heartbeats, _ := session.snapshot()
		return len(heartbeats) == 1
	}, 3*time.Second, 20*time.Millisecond)

	_, _, disconnects := session.snapshot()
	assert.Empty(t, disconnects)
}

func TestConnectionLifecycle(t *testing.T) {
	srv, session := newTestServer(t)

	token := signToken(t, "u1", time.Now().Add(time.Hour))
	conn := dial(t, srv, cookieHeader(token))

	require.Eventually(t, func() bool {
		connects, _, _ := session.snapshot()
		return len(connects) == 1
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	))
	conn.Close()

	require.Eventually(t, func() bool {
		_, _, disconnects := session.snapshot()
		return len(disconnects) == 1
	}, 3*time.Second, 20*time.Millisecond)

	_, _, disconnects := session.snapshot()
	assert.Equal(t, []string{"u1"}, disconnects)
}
