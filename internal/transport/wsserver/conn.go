package wsserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-PvP-chess/pkg/chessdto"
)

const writeTimeout = 5 * time.Second

var errConnClosed = errors.New("connection closed")

// conn is one accepted websocket. wsjson.Write is not safe for concurrent
// writers, so every write goes through mu.
type conn struct {
	id string
	ws *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func newConn(id string, ws *websocket.Conn) *conn {
	return &conn{id: id, ws: ws}
}

func (c *conn) ID() string { return c.id }

func (c *conn) Send(ctx context.Context, msg *chessdto.ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	dctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, writeTimeout)
		defer cancel()
	}
	return wsjson.Write(dctx, c.ws, msg)
}

func (c *conn) close(code websocket.StatusCode, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	_ = c.ws.Close(code, reason)
}
