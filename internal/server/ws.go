package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AmolDerickSoans/polyfloat-news/internal/fanout"
	"github.com/AmolDerickSoans/polyfloat-news/internal/logging"
	"github.com/AmolDerickSoans/polyfloat-news/internal/models"
)

// writeWait bounds control frame writes to slow peers.
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn adapts a gorilla connection to the fanout.Conn contract.
// Writes come from both the broadcaster and the read loop (pong
// replies), so they are serialized under a mutex.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// WSHandler upgrades subscriber connections and keeps them registered
// for the lifetime of the socket.
type WSHandler struct {
	registry *fanout.Registry
	logger   *logging.Logger
}

// NewWSHandler creates a websocket handler backed by the registry.
func NewWSHandler(registry *fanout.Registry, logger *logging.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		logger:   logger.With(logging.Stage("websocket")),
	}
}

// ServeHTTP handles GET /ws?user_id=<id>.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			logging.UserID(userID), logging.Error(err))
		return
	}

	wc := &wsConn{conn: conn}
	if !h.registry.Register(userID, wc) {
		h.logger.WarnContext(r.Context(), "rejecting duplicate connection",
			logging.UserID(userID))
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user already connected")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	h.logger.InfoContext(r.Context(), "subscriber connected", logging.UserID(userID))
	h.readLoop(userID, wc)

	h.registry.Unregister(userID)
	h.logger.Info("subscriber disconnected", logging.UserID(userID))
}

// readLoop consumes inbound frames until the peer goes away. The only
// recognized client message is an application-level ping.
func (h *WSHandler) readLoop(userID string, wc *wsConn) {
	for {
		_, data, err := wc.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg models.ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("ignoring malformed client message", logging.UserID(userID))
			continue
		}

		switch msg.Type {
		case models.MessageTypePing:
			pong := models.Envelope{
				Type:      models.MessageTypePong,
				Timestamp: float64(time.Now().UnixNano()) / 1e9,
			}
			if err := wc.WriteJSON(pong); err != nil {
				return
			}
		case models.MessageTypeSubscribe:
			// Filter updates go through the subscriptions API; the frame
			// is acknowledged in the logs only.
			h.logger.Info("subscriber sent filter update", logging.UserID(userID))
		}
	}
}
