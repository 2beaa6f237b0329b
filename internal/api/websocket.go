package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jokker-dev/iot-registry/internal/infrastructure/config"
	"github.com/jokker-dev/iot-registry/internal/infrastructure/logging"
)

// Registry event channels. These four names are the complete set a
// WebSocket client can subscribe to; anything else is rejected at
// subscribe time.
const (
	ChannelDeviceCreated = "device.created"
	ChannelDeviceUpdated = "device.updated"
	ChannelDeviceDeleted = "device.deleted"
	ChannelConfigUpdated = "config.updated"
)

var registryChannels = map[string]struct{}{
	ChannelDeviceCreated: {},
	ChannelDeviceUpdated: {},
	ChannelDeviceDeleted: {},
	ChannelConfigUpdated: {},
}

// Message types exchanged over the socket.
const (
	wsTypeSubscribe   = "subscribe"
	wsTypeUnsubscribe = "unsubscribe"
	wsTypePing        = "ping"
	wsTypePong        = "pong"
	wsTypeEvent       = "event"
	wsTypeResponse    = "response"
	wsTypeError       = "error"
)

// wsSendBufferSize is the per-session outbound buffer. A session that
// falls this far behind starts dropping events instead of stalling
// broadcasts to everyone else.
const wsSendBufferSize = 256

// wsEnvelope is the frame exchanged with WebSocket clients in both
// directions.
type wsEnvelope struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// wsChannelList is the payload of subscribe and unsubscribe frames.
type wsChannelList struct {
	Channels []string `json:"channels"`
}

// Hub fans registry events out to connected WebSocket sessions.
type Hub struct {
	cfg      config.WebSocketConfig
	logger   *logging.Logger
	mu       sync.RWMutex
	sessions map[*wsSession]struct{}
}

// wsSession is one connected WebSocket client and its channel
// subscriptions.
type wsSession struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu   sync.RWMutex
	subs map[string]struct{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checking is handled by the CORS middleware.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// NewHub creates a hub with no sessions attached.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[*wsSession]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects every
// session.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for sess := range h.sessions {
		close(sess.send)
		if sess.conn != nil {
			sess.conn.Close()
		}
		delete(h.sessions, sess)
	}
}

func (h *Hub) attach(sess *wsSession) {
	h.mu.Lock()
	h.sessions[sess] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.sessionCount())
}

// detach removes a session. Only the goroutine that actually removes
// the session from the map closes its send channel, so shutdown and
// readPump cannot double-close it.
func (h *Hub) detach(sess *wsSession) {
	h.mu.Lock()
	_, present := h.sessions[sess]
	delete(h.sessions, sess)
	h.mu.Unlock()

	if present {
		close(sess.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", h.sessionCount())
}

func (h *Hub) sessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast delivers a registry event to every session subscribed to
// the channel. The session list is snapshotted before any sends so a
// slow client never blocks attach or detach.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(wsEnvelope{
		Type:      wsTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal broadcast event", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	snapshot := make([]*wsSession, 0, len(h.sessions))
	for sess := range h.sessions {
		snapshot = append(snapshot, sess)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sess := range snapshot {
		if sess.subscribed(channel) {
			sess.offer(data)
			delivered++
		}
	}
	if delivered > 0 {
		h.logger.Debug("event broadcast", "channel", channel, "recipients", delivered)
	}
}

// handleWebSocket upgrades the request and starts the session pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sess := &wsSession{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
		subs: make(map[string]struct{}),
	}
	s.hub.attach(sess)

	go sess.writePump(s.wsCfg)
	go sess.readPump(s.wsCfg)
}

func (c *wsSession) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	deadline := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(deadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(deadline))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		// Any client frame resets the read deadline, keeping the
		// session alive even if the peer ignores protocol pings.
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(deadline))
		c.handleFrame(frame)
	}
}

func (c *wsSession) writePump(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	writeWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				// Hub closed the channel
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsSession) handleFrame(data []byte) {
	var msg wsEnvelope
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case wsTypeSubscribe:
		c.handleSubscribe(msg)
	case wsTypeUnsubscribe:
		c.handleUnsubscribe(msg)
	case wsTypePing:
		c.reply(msg.ID, wsTypePong, nil)
	default:
		c.sendError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// handleSubscribe validates the requested channels against the registry
// event set and records them. One unknown channel rejects the whole
// request so clients notice typos immediately.
func (c *wsSession) handleSubscribe(msg wsEnvelope) {
	channels, ok := decodeChannels(msg.Payload)
	if !ok {
		c.sendError(msg.ID, "invalid subscribe payload")
		return
	}
	for _, ch := range channels {
		if _, known := registryChannels[ch]; !known {
			c.sendError(msg.ID, "unknown channel: "+ch)
			return
		}
	}

	c.mu.Lock()
	for _, ch := range channels {
		c.subs[ch] = struct{}{}
	}
	c.mu.Unlock()

	c.hub.logger.Info("websocket client subscribed", "channels", channels)
	c.reply(msg.ID, wsTypeResponse, map[string]any{"subscribed": channels})
}

func (c *wsSession) handleUnsubscribe(msg wsEnvelope) {
	channels, ok := decodeChannels(msg.Payload)
	if !ok {
		c.sendError(msg.ID, "invalid unsubscribe payload")
		return
	}

	c.mu.Lock()
	for _, ch := range channels {
		delete(c.subs, ch)
	}
	c.mu.Unlock()

	c.reply(msg.ID, wsTypeResponse, map[string]any{"unsubscribed": channels})
}

// decodeChannels extracts the channel list from a subscribe or
// unsubscribe payload.
func decodeChannels(payload any) ([]string, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	var list wsChannelList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list.Channels, true
}

func (c *wsSession) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subs[channel]
	return ok
}

// offer queues a frame for the session without blocking. A full buffer
// drops the frame; a closed channel (session detached mid-broadcast) is
// absorbed by the recover.
func (c *wsSession) offer(frame []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- frame:
	default:
	}
}

// reply sends a control response to this session only.
func (c *wsSession) reply(id, msgType string, payload any) {
	data, err := json.Marshal(wsEnvelope{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.offer(data)
}

func (c *wsSession) sendError(id, message string) {
	c.reply(id, wsTypeError, map[string]string{"message": message})
}
