package ws

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	maxMessageSize = 512 * 1024
)

// WebSocket wraps one upgraded gateway connection with the write deadline and
// read limit every connection gets.
type WebSocket struct {
	conn *websocket.Conn
	log  *slog.Logger
}

func NewWebSocket(log *slog.Logger, conn *websocket.Conn) *WebSocket {
	return &WebSocket{conn: conn, log: log}
}

func (w *WebSocket) WriteMessage(data []byte) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadLoop pumps inbound frames into onMsg until the peer goes away. A clean
// close and a dead peer end the loop the same way; only an unexpected close
// is worth a log line.
func (w *WebSocket) ReadLoop(onMsg func([]byte)) {
	defer w.Close()

	w.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				w.log.Warn("ws conn - read loop - unexpected close", "err", err)
			}
			return
		}
		if len(data) > 0 {
			onMsg(data)
		}
	}
}

func (w *WebSocket) Close() {
	_ = w.conn.Close()
}
