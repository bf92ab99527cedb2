package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/app/server/ws"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/contracts"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/services"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/platform/logger"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type WSHandler struct {
	hub     contracts.Registry
	tokens  *services.TokenService
	session services.ISessionService
}

func NewWSHandler(hub contracts.Registry, tokens *services.TokenService, session services.ISessionService) *WSHandler {
	return &WSHandler{
		hub:     hub,
		tokens:  tokens,
		session: session,
	}
}

// credential pulls the access token from the handshake context: the
// accessToken cookie first, then a bearer Authorization header. The payload
// is never consulted.
func credential(r *http.Request) string {
	if c, err := r.Cookie("accessToken"); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return ""
}

// reject closes the freshly-upgraded connection with a machine-distinguishable
// close code. Nothing was registered yet, so there is no state to clean up.
func reject(log *slog.Logger, conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
	_ = conn.Close()
	log.Warn("ws handler - handshake rejected", "close_code", code, "reason", reason)
}

func (s *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	span := trace.SpanFromContext(r.Context())

	// The connection must be upgraded before auth so rejections can carry a
	// WebSocket close code instead of an HTTP status.
	var upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten later
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade - ws upgrade failed", "err", err)
		return
	}

	token := credential(r)
	userID, err := s.tokens.Authenticate(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoCredential):
			reject(log, conn, domain.CloseNoCredential, "no access token found")
		case errors.Is(err, domain.ErrTokenExpired):
			reject(log, conn, domain.CloseCredentialExpired, "access token expired")
		default:
			reject(log, conn, domain.CloseCredentialInvalid, "invalid access token")
		}
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	// Outlive the HTTP request; the session ends when the socket does.
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	defer cancel()

	sock := ws.NewWebSocket(log, conn)
	client := ws.NewClient(ctx, sock, userID)

	// Last registration wins; the prior local connection for the same
	// identity is force-closed rather than left orphaned.
	if prior := s.hub.Register(client); prior != nil {
		log.InfoContext(ctx, "ws handler - register - duplicate login, closing prior connection", "user_id", userID)
		prior.Close()
	}
	defer s.session.HandleDisconnect(sessionCtx, client)

	if err := s.session.HandleConnect(ctx, userID); err != nil {
		// Transient store failures degrade to bounded staleness; the
		// connection itself stays up.
		log.ErrorContext(ctx, "ws handler - handle connect - degraded", "user_id", userID, "err", err)
	}
	log.InfoContext(ctx, "ws handler - ws connection established", "user_id", userID)

	sock.ReadLoop(func(data []byte) {
		s.dispatch(ctx, log, userID, data)
	})
}

// dispatch routes one inbound frame. A malformed frame is dropped without
// closing the connection.
func (s *WSHandler) dispatch(ctx context.Context, log *slog.Logger, userID string, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.WarnContext(ctx, "ws handler - dispatch - malformed frame dropped", "user_id", userID, "err", err)
		return
	}
	switch env.Type {
	case domain.TypeHeartbeat:
		_ = s.session.HandleHeartbeat(ctx, userID)
	case domain.TypeMessage:
		_ = s.session.HandleRelay(ctx, userID, data)
	case domain.TypeRoom:
		var req domain.RoomRequest
		if err := json.Unmarshal(data, &req); err != nil {
			log.WarnContext(ctx, "ws handler - dispatch - malformed room frame dropped", "user_id", userID, "err", err)
			return
		}
		_ = s.session.HandleRoom(ctx, userID, req)
	default:
		log.WarnContext(ctx, "ws handler - dispatch - unknown frame type dropped", "user_id", userID, "type", env.Type)
	}
}
