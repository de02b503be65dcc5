package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/townsquare/internal/town"
)

const writeTimeout = 5 * time.Second

// conn is one client connection. It implements town.Socket.
type conn struct {
	ws     *websocket.Conn
	hub    *Hub
	logger *slog.Logger
	send   chan []byte

	closing   chan struct{}
	closeOnce sync.Once
	// lagging is set once a frame could not be queued. The client's view
	// is stale from then on, so it is hung up rather than flushed.
	lagging atomic.Bool

	mu       sync.Mutex
	handlers map[string]func(json.RawMessage)
}

func newConn(ws *websocket.Conn, hub *Hub, logger *slog.Logger) *conn {
	return &conn{
		ws:       ws,
		hub:      hub,
		logger:   logger,
		send:     make(chan []byte, 16),
		closing:  make(chan struct{}),
		handlers: make(map[string]func(json.RawMessage)),
	}
}

func (c *conn) Emit(event string, payload any) {
	if data := encodeFrame(event, payload); data != nil {
		c.enqueue(data)
	}
}

func (c *conn) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		if c.lagging.CompareAndSwap(false, true) {
			c.logger.Warn("websocket send buffer full, disconnecting")
			c.Disconnect()
		}
	}
}

func (c *conn) On(event string, fn func(json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = fn
}

// To returns an emitter reaching everyone in room except this connection.
func (c *conn) To(room string) town.Emitter {
	return roomEmitter{hub: c.hub, room: room, except: c}
}

// Disconnect asks the writer to flush and close. It never blocks.
func (c *conn) Disconnect() {
	c.closeOnce.Do(func() { close(c.closing) })
}

func (c *conn) dispatch(event string, data json.RawMessage) {
	c.mu.Lock()
	fn := c.handlers[event]
	c.mu.Unlock()
	if fn != nil {
		fn(data)
	}
}

func (c *conn) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-c.send:
			if err := c.write(ctx, data); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-c.closing:
			if c.lagging.Load() {
				c.ws.Close(websocket.StatusTryAgainLater, "too slow")
				return
			}
			c.flush(ctx)
			c.ws.Close(websocket.StatusNormalClosure, "disconnected")
			return
		}
	}
}

func (c *conn) flush(ctx context.Context) {
	for {
		select {
		case data := <-c.send:
			if err := c.write(ctx, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *conn) write(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageText, data)
}

// readLoop dispatches inbound frames until the connection ends.
func (c *conn) readLoop(ctx context.Context) {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			c.logger.Debug("websocket read ended", "error", err)
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Debug("dropping malformed frame", "error", err)
			continue
		}
		// disconnect is only ever raised by the transport itself.
		if f.Event == town.EventDisconnect {
			continue
		}
		c.dispatch(f.Event, f.Data)
	}
}

func handleTownSocket(logger *slog.Logger, registry *town.Registry, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		townID := r.URL.Query().Get("townID")
		userName := r.URL.Query().Get("userName")

		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer ws.CloseNow()

		t, ok := registry.Town(townID)
		if !ok || userName == "" {
			ws.Close(websocket.StatusPolicyViolation, "unknown town")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		c := newConn(ws, hub, logger.With("town_id", townID))
		hub.Join(townID, c)
		defer hub.Leave(townID, c)

		go c.writeLoop(ctx)

		p, err := t.AddPlayer(ctx, userName, c)
		if err != nil {
			logger.Warn("player could not join", "town_id", townID, "error", err)
			ws.Close(websocket.StatusTryAgainLater, "could not join town")
			return
		}
		c.Emit(town.EventInitialize, t.InitialState(p))

		c.readLoop(ctx)
		c.dispatch(town.EventDisconnect, nil)
	}
}
