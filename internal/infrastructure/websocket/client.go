package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/pkg/config"
)

// Handler receives the inbound frames of a client
type Handler interface {
	HandleMessage(ctx context.Context, c *Client, raw []byte)
	HandleClose(c *Client)
}

// Client is one websocket connection. Outbound events go through a
// bounded queue drained by the write pump; Send never blocks.
type Client struct {
	id       string
	mu       sync.RWMutex
	identity string
	conn     *websocket.Conn
	cfg      config.WebSocketConfig
	send     chan entities.Event
	done     chan struct{}
	once     sync.Once
	logger   *zap.Logger
}

// NewClient wraps an upgraded connection. identity is "" for anonymous peers.
func NewClient(conn *websocket.Conn, identity string, cfg config.WebSocketConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Client{
		id:       id,
		identity: identity,
		conn:     conn,
		cfg:      cfg,
		send:     make(chan entities.Event, cfg.SendBuffer),
		done:     make(chan struct{}),
		logger:   logger.Named("ws").With(zap.String("conn_id", id)),
	}
}

// ID returns the connection id
func (c *Client) ID() string { return c.id }

// Identity returns the identity proven at upgrade time, or the one bound
// by a later announce
func (c *Client) Identity() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// BindIdentity attaches identity to the connection after an accepted announce
func (c *Client) BindIdentity(identity string) {
	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()
}

// Send queues ev, reporting false when the queue is full or the client closed
func (c *Client) Send(ev entities.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- ev:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Done is closed once the client is closed
func (c *Client) Done() <-chan struct{} { return c.done }

// Run pumps frames until the peer goes away or ctx ends
func (c *Client) Run(ctx context.Context, h Handler) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx, h)

	c.Close()
	h.HandleClose(c)
}

func (c *Client) readPump(ctx context.Context, h Handler) {
	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				c.logger.Debug("ws.read.closed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h.HandleMessage(ctx, c, raw)
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.writeClose()
			return
		case <-c.done:
			return
		case ev := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Debug("ws.write.failed", zap.String("type", string(ev.Type)), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeClose() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteWait))
}
