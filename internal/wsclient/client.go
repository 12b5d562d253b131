// Package wsclient is a reconnecting websocket client for the game server.
package wsclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-PvP-chess/pkg/chessdto"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
)

type MessageCallback func(msg *chessdto.ServerMessage)

type StateCallback func(state State)

// HeaderProvider supplies extra handshake headers.
type HeaderProvider func() map[string]string

var ErrNotConnected = errors.New("websocket not connected")

type callbackEntry struct {
	id       int
	callback MessageCallback
}

type stateCallbackEntry struct {
	id       int
	callback StateCallback
}

// Client keeps one connection to the server. CONNECT commands that were sent
// are replayed after a reconnect so the server re-registers the session.
type Client struct {
	url string

	conn   *websocket.Conn
	connM  sync.Mutex
	writeM sync.Mutex

	state  State
	stateM sync.RWMutex

	msgCbs   []callbackEntry
	stateCbs []stateCallbackEntry
	nextCbID int
	cbM      sync.RWMutex

	joined  map[string]chessdto.Command
	joinedM sync.Mutex

	maxReconnectAttempts int
	reconnectDelay       time.Duration
	pingInterval         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc

	headerProvider HeaderProvider
}

func New(url string, maxReconnectAttempts int, reconnectDelay time.Duration) *Client {
	return &Client{
		url:                  url,
		state:                StateDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
		joined:               make(map[string]chessdto.Command),
	}
}

// SetPingInterval changes the keepalive period; <= 0 disables pings.
func (c *Client) SetPingInterval(d time.Duration) { c.pingInterval = d }

// SetHeaderProvider injects headers into every handshake.
func (c *Client) SetHeaderProvider(h HeaderProvider) { c.headerProvider = h }

func (c *Client) State() State {
	c.stateM.RLock()
	defer c.stateM.RUnlock()
	return c.state
}

func (c *Client) Connect(ctx context.Context) error {
	switch c.State() {
	case StateConnected, StateConnecting:
		return nil
	}
	c.rootCtx, c.rootCancel = context.WithCancel(context.Background())
	c.setState(StateConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := c.dial(dialCtx)
	if err != nil {
		c.setState(StateFailed)
		c.scheduleReconnect()
		return err
	}
	c.attach(conn)
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, c.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      c.buildHeaders(),
	})
	return conn, err
}

func (c *Client) attach(conn *websocket.Conn) {
	c.connM.Lock()
	c.conn = conn
	c.connM.Unlock()
	c.setState(StateConnected)

	c.wg.Add(1)
	go c.listen(conn)
	if c.pingInterval > 0 {
		c.wg.Add(1)
		go c.pingLoop(conn)
	}
}

// Send writes cmd to the server. A CONNECT is remembered for replay and a
// LEAVE forgets it.
func (c *Client) Send(ctx context.Context, cmd *chessdto.Command) error {
	if cmd == nil {
		return errors.New("nil command")
	}
	switch cmd.Type {
	case chessdto.CommandConnect:
		c.joinedM.Lock()
		c.joined[cmd.GameID] = *cmd
		c.joinedM.Unlock()
	case chessdto.CommandLeave:
		c.joinedM.Lock()
		delete(c.joined, cmd.GameID)
		c.joinedM.Unlock()
	}
	return c.write(ctx, cmd)
}

func (c *Client) write(ctx context.Context, v any) error {
	c.connM.Lock()
	conn := c.conn
	c.connM.Unlock()
	if conn == nil || c.State() != StateConnected {
		return ErrNotConnected
	}
	dctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	c.writeM.Lock()
	defer c.writeM.Unlock()
	return wsjson.Write(dctx, conn, v)
}

func (c *Client) replay() {
	c.joinedM.Lock()
	cmds := make([]chessdto.Command, 0, len(c.joined))
	for _, cmd := range c.joined {
		cmds = append(cmds, cmd)
	}
	c.joinedM.Unlock()
	for i := range cmds {
		_ = c.write(c.rootCtx, &cmds[i])
	}
}

func (c *Client) listen(conn *websocket.Conn) {
	defer c.wg.Done()
	for {
		var msg chessdto.ServerMessage
		if err := wsjson.Read(c.rootCtx, conn, &msg); err != nil {
			if c.isStopping() {
				return
			}
			c.setState(StateDisconnected)
			c.closeConn(conn, websocket.StatusGoingAway, "reconnect")
			c.scheduleReconnect()
			return
		}

		c.cbM.RLock()
		callbacks := make([]callbackEntry, len(c.msgCbs))
		copy(callbacks, c.msgCbs)
		c.cbM.RUnlock()
		for _, entry := range callbacks {
			if entry.callback != nil {
				entry.callback(&msg)
			}
		}
	}
}

func (c *Client) pingLoop(conn *websocket.Conn) {
	defer c.wg.Done()
	t := time.NewTicker(c.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-c.stopCh:
			return
		case <-c.rootCtx.Done():
			return
		case <-t.C:
		}
		if !c.current(conn) {
			return
		}
		ctx, cancel := context.WithTimeout(c.rootCtx, 3*time.Second)
		err := conn.Ping(ctx)
		cancel()
		if err == nil {
			failures = 0
			continue
		}
		failures++
		if failures >= 2 {
			// The listener sees the close and schedules the reconnect.
			c.closeConn(conn, websocket.StatusGoingAway, "ping failure")
			return
		}
	}
}

func (c *Client) scheduleReconnect() {
	if c.maxReconnectAttempts <= 0 || c.isStopping() {
		return
	}
	c.setState(StateReconnecting)

	go func() {
		for attempt := 1; attempt <= c.maxReconnectAttempts; attempt++ {
			select {
			case <-c.stopCh:
				return
			case <-time.After(c.backoff(attempt)):
			}

			dialCtx, cancel := context.WithTimeout(c.rootCtx, 10*time.Second)
			conn, err := c.dial(dialCtx)
			cancel()
			if err != nil {
				continue
			}
			if c.isStopping() {
				_ = conn.Close(websocket.StatusNormalClosure, "close")
				return
			}
			c.attach(conn)
			c.replay()
			return
		}
		c.setState(StateFailed)
	}()
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.reconnectDelay
	if d <= 0 {
		d = 200 * time.Millisecond
	}
	for i := 1; i < attempt && d < 5*time.Second; i++ {
		d *= 2
	}
	return d
}

func (c *Client) OnMessage(cb MessageCallback) int {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	c.nextCbID++
	c.msgCbs = append(c.msgCbs, callbackEntry{id: c.nextCbID, callback: cb})
	return c.nextCbID
}

func (c *Client) RemoveMessageCallback(id int) {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	for i, cb := range c.msgCbs {
		if cb.id == id {
			c.msgCbs = append(c.msgCbs[:i], c.msgCbs[i+1:]...)
			break
		}
	}
}

func (c *Client) OnStateChange(cb StateCallback) int {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	c.nextCbID++
	c.stateCbs = append(c.stateCbs, stateCallbackEntry{id: c.nextCbID, callback: cb})
	return c.nextCbID
}

func (c *Client) RemoveStateCallback(id int) {
	c.cbM.Lock()
	defer c.cbM.Unlock()
	for i, cb := range c.stateCbs {
		if cb.id == id {
			c.stateCbs = append(c.stateCbs[:i], c.stateCbs[i+1:]...)
			break
		}
	}
}

func (c *Client) setState(state State) {
	c.stateM.Lock()
	c.state = state
	c.stateM.Unlock()

	c.cbM.RLock()
	callbacks := make([]stateCallbackEntry, len(c.stateCbs))
	copy(callbacks, c.stateCbs)
	c.cbM.RUnlock()
	for _, entry := range callbacks {
		if entry.callback != nil {
			entry.callback(state)
		}
	}
}

func (c *Client) Close(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.connM.Lock()
	conn := c.conn
	c.connM.Unlock()
	if conn != nil {
		c.closeConn(conn, websocket.StatusNormalClosure, "close")
	}
	if c.rootCancel != nil {
		defer c.rootCancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		c.setState(StateDisconnected)
		return nil
	}
}

func (c *Client) current(conn *websocket.Conn) bool {
	c.connM.Lock()
	defer c.connM.Unlock()
	return c.conn == conn
}

func (c *Client) closeConn(conn *websocket.Conn, code websocket.StatusCode, reason string) {
	c.connM.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.connM.Unlock()
	_ = conn.Close(code, reason)
}

func (c *Client) isStopping() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

func (c *Client) buildHeaders() http.Header {
	hdr := http.Header{}
	if c.headerProvider == nil {
		return hdr
	}
	for k, v := range c.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}
