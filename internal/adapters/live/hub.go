// Package live pushes the scoreboard to read-only websocket viewers (a pool-side
// display, a second tablet) after every scoresheet change.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/polo/pkg/logger"
	"github.com/okian/polo/pkg/metrics"
)

// Message is the envelope written to every viewer.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub fans messages out to websocket connections.
type Hub struct {
	mu    sync.RWMutex
	conns map[*conn]struct{}
	last  []byte // replayed to new viewers

	upgrader    websocket.Upgrader
	broadcastCh chan []byte
	cfg         hubConfig
	log         logger.Logger
}

type conn struct {
	id          string
	ws          *websocket.Conn
	send        chan []byte
	hub         *Hub
	connectedAt time.Time
	once        sync.Once
}

// NewHub creates a hub. Call Start to begin delivering broadcasts.
func NewHub(opts ...Option) *Hub {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	h := &Hub{
		conns: make(map[*conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.readBufferSize,
			WriteBufferSize: cfg.writeBufferSize,
			CheckOrigin:     cfg.checkOrigin,
		},
		broadcastCh: make(chan []byte, cfg.broadcastBuffer),
		cfg:         cfg,
		log:         cfg.log,
	}
	if h.log == nil {
		h.log = logger.Get().Named("live")
	}
	return h
}

// Start delivers broadcasts until ctx is done, then closes every connection.
func (h *Hub) Start(ctx context.Context) {
	h.log.Info(ctx, "live hub started")
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.log.Info(ctx, "live hub stopped")
			return
		case data := <-h.broadcastCh:
			h.fanOut(ctx, data)
		}
	}
}

// Broadcast queues a message of type typ for every viewer. It never blocks;
// when the queue is full the message is dropped because the next one
// supersedes it anyway.
func (h *Hub) Broadcast(ctx context.Context, typ string, payload any) error {
	data, err := json.Marshal(Message{Type: typ, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	h.mu.Lock()
	h.last = data
	h.mu.Unlock()

	select {
	case h.broadcastCh <- data:
	default:
		h.log.Warn(ctx, "broadcast queue full, dropping message", logger.String("type", typ))
	}
	return nil
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Stats returns connection statistics for the /stats endpoint.
func (h *Hub) Stats() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var oldest time.Duration
	for c := range h.conns {
		if age := time.Since(c.connectedAt); age > oldest {
			oldest = age
		}
	}
	return map[string]any{
		"connections":         len(h.conns),
		"oldest_connection_s": int64(oldest.Seconds()),
	}
}

// ServeHTTP upgrades the request and registers the viewer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	c := &conn{
		id:          uuid.NewString(),
		ws:          ws,
		send:        make(chan []byte, h.cfg.sendBuffer),
		hub:         h,
		connectedAt: time.Now(),
	}
	h.register(c)

	go c.writePump()
	go c.readPump()

	h.log.Info(r.Context(), "live viewer connected",
		logger.String("connection_id", c.id),
		logger.String("remote", r.RemoteAddr))
}

func (h *Hub) register(c *conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	n := len(h.conns)
	h.mu.Unlock()
	metrics.UpdateLiveConnections(n)
}

// unregister removes c and closes its send channel. Sends happen under the
// read lock, so closing under the write lock never races a send.
func (h *Hub) unregister(c *conn) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.conns, c)
		close(c.send)
		n := len(h.conns)
		h.mu.Unlock()
		metrics.UpdateLiveConnections(n)
	})
}

func (h *Hub) fanOut(ctx context.Context, data []byte) {
	var slow []*conn
	h.mu.RLock()
	for c := range h.conns {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn(ctx, "viewer send buffer full, closing connection",
			logger.String("connection_id", c.id))
		metrics.RecordLiveDropped()
		h.unregister(c)
		_ = c.ws.Close()
	}
	metrics.RecordBroadcast()
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	targets := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		h.unregister(c)
	}
}

func (c *conn) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
		c.hub.unregister(c)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.writeTimeout))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services control frames; viewers cannot edit the scoresheet.
func (c *conn) readPump() {
	cfg := c.hub.cfg
	defer func() {
		c.hub.unregister(c)
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(cfg.maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.readTimeout()))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.readTimeout()))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug(context.Background(), "viewer closed unexpectedly",
					logger.String("connection_id", c.id), logger.Error(err))
			}
			return
		}
	}
}
