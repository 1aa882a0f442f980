// Package realtime pushes display frames to screens over websockets and
// ingests guest reactions from Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/danielrjepsen/Nory-sub001/internal/logger"
	"github.com/danielrjepsen/Nory-sub001/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16

	// RefreshInterval pushes a frame even without changes so screens pick up
	// ambient motion and expiring activities.
	RefreshInterval = time.Second
)

// RenderFunc produces the current frame
type RenderFunc func() any

// Client is one connected screen
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type directMessage struct {
	client *Client
	msg    []byte
}

// Hub fans frames out to every connected screen. Broadcasts are coalesced:
// many Notify calls between two frames produce one frame.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	direct     chan directMessage
	dirty      chan struct{}
	done       chan struct{}

	render   RenderFunc
	ctrl     Controller
	upgrader websocket.Upgrader
	refresh  time.Duration
	count    atomic.Int64
	metrics  *metrics.Metrics
	log      *log.Logger
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithCheckOrigin sets the websocket origin check
func WithCheckOrigin(fn func(r *http.Request) bool) HubOption {
	return func(h *Hub) { h.upgrader.CheckOrigin = fn }
}

// WithRefresh sets the idle frame interval; zero disables it
func WithRefresh(d time.Duration) HubOption {
	return func(h *Hub) { h.refresh = d }
}

func WithMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// NewHub creates a hub rendering frames with render. ctrl receives commands
// sent by screens and may be nil for a read-only hub.
func NewHub(render RenderFunc, ctrl Controller, opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan directMessage),
		dirty:      make(chan struct{}, 1),
		done:       make(chan struct{}),
		render:     render,
		ctrl:       ctrl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		refresh: RefreshInterval,
		log:     logger.Realtime(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Notify marks the frame as changed. It never blocks.
func (h *Hub) Notify() {
	select {
	case h.dirty <- struct{}{}:
	default:
	}
}

// Count returns the number of connected screens
func (h *Hub) Count() int {
	return int(h.count.Load())
}

// Run processes registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	var tick <-chan time.Time
	if h.refresh > 0 {
		ticker := time.NewTicker(h.refresh)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Add(1)
			h.metrics.ScreenConnected(1)
			h.deliver(c, h.frame())

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case d := <-h.direct:
			if _, ok := h.clients[d.client]; ok {
				h.deliver(d.client, d.msg)
			}

		case <-h.dirty:
			h.broadcast()

		case <-tick:
			if len(h.clients) > 0 {
				h.broadcast()
			}
		}
	}
}

func (h *Hub) broadcast() {
	if len(h.clients) == 0 {
		return
	}
	msg := h.frame()
	for c := range h.clients {
		h.deliver(c, msg)
	}
}

// deliver queues msg for c, dropping clients that cannot keep up
func (h *Hub) deliver(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.log.Warn("Dropping slow screen", "remote", c.conn.RemoteAddr())
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
	h.metrics.ScreenConnected(-1)
}

func (h *Hub) frame() []byte {
	return encode(Envelope{Type: MsgFrame, Data: h.render(), Timestamp: time.Now()})
}

// ServeWS upgrades the request and attaches the screen to the hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return nil
	}

	go c.writePump()
	go c.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.log.Warn("Websocket read failed", "error", err)
			}
			return
		}
		if c.hub.ctrl == nil {
			continue
		}
		if err := Dispatch(c.hub.ctrl, message); err != nil {
			c.hub.log.Debug("Rejected screen message", "error", err)
			c.reply(Envelope{Type: MsgError, Error: err.Error(), Timestamp: time.Now()})
		}
	}
}

// reply sends env to this screen only
func (c *Client) reply(env Envelope) {
	select {
	case c.hub.direct <- directMessage{client: c, msg: encode(env)}:
	case <-c.hub.done:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Realtime().Error("Failed to marshal message", "error", err)
		return []byte("{}")
	}
	return b
}
