package ws

import (
	"context"
	"sync"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/domain"
)

// transport is the write side of an upgraded connection.
type transport interface {
	WriteMessage(data []byte) error
	Close()
}

type RuntimeClient struct {
	ctx    context.Context
	cancel context.CancelFunc
	ws     transport
	userID string
	out    chan []byte
	once   sync.Once
}

func NewClient(
	parent context.Context,
	ws transport,
	userID string,
) *RuntimeClient {
	ctx, cancel := context.WithCancel(parent)
	c := &RuntimeClient{
		ctx:    ctx,
		cancel: cancel,
		ws:     ws,
		userID: userID,
		out:    make(chan []byte, 256),
	}
	go c.writeLoop()
	return c
}

func (c *RuntimeClient) UserID() string { return c.userID }

// Send never blocks: a full buffer means the peer is not draining its socket,
// and stalling here would stall whichever connection handler called us. The
// slow client is disconnected instead.
func (c *RuntimeClient) Send(ctx context.Context, data []byte) error {
	select {
	case <-c.ctx.Done():
		return domain.ErrClientClosed
	default:
	}
	select {
	case c.out <- data:
		return nil
	default:
		c.Close()
		return domain.ErrSendBufferFull
	}
}

// Close is safe to call from any goroutine and any number of times. The out
// channel is never closed; cancelling the context stops both Send and the
// write loop without racing a concurrent sender.
func (c *RuntimeClient) Close() {
	c.once.Do(func() {
		c.cancel()
		c.ws.Close()
	})
}

func (c *RuntimeClient) writeLoop() {
	defer c.Close()
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			_ = c.ws.WriteMessage(data)
		}
	}
}
