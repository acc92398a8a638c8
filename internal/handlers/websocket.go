package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/SM8970/Earn-FF-Diamond/internal/logging"
	"github.com/SM8970/Earn-FF-Diamond/internal/models"
	"github.com/SM8970/Earn-FF-Diamond/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler pushes reward state to the session that owns it. It
// implements services.Notifier; there is no cross-session broadcast of
// balance changes.
type WebSocketHandler struct {
	engine *services.RewardEngine
	hub    *WebSocketHub
	logger zerolog.Logger
}

type WebSocketHub struct {
	clients    map[string]*websocket.Conn
	register   chan *Client
	unregister chan *Client
	send       chan *Message
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
}

type Message struct {
	Type   string      `json:"type"`
	UserID string      `json:"-"`
	Data   interface{} `json:"data"`
}

func NewWebSocketHandler(engine *services.RewardEngine, logger zerolog.Logger) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan *Message, 100),
	}

	go hub.run()

	return &WebSocketHandler{
		engine: engine,
		hub:    hub,
		logger: logger,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	logger := logging.WithUserID(h.logger, userID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("failed to upgrade to websocket")
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	if state, err := h.engine.State(userID); err == nil {
		h.NotifyState(userID, state)
	}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn().Err(err).Msg("websocket error")
			}
			break
		}

		if msg.Type == "PING" {
			h.hub.send <- &Message{
				Type:   "PONG",
				UserID: userID,
				Data:   gin.H{"timestamp": time.Now().Unix()},
			}
		}
	}
}

// --- services.Notifier ---

func (h *WebSocketHandler) NotifyState(userID string, state *models.RewardState) {
	h.hub.send <- &Message{Type: "STATE_UPDATE", UserID: userID, Data: state}
}

func (h *WebSocketHandler) NotifyAdTick(userID string, ticksLeft int) {
	h.hub.send <- &Message{Type: "AD_TICK", UserID: userID, Data: gin.H{"ticks_left": ticksLeft}}
}

func (h *WebSocketHandler) NotifyAdReady(userID string) {
	h.hub.send <- &Message{Type: "AD_READY", UserID: userID, Data: gin.H{"dismissable": true}}
}

func (h *WebSocketHandler) NotifySpinResult(userID string, result *models.SpinResult) {
	h.hub.send <- &Message{Type: "SPIN_RESULT", UserID: userID, Data: result}
}

func (h *WebSocketHandler) NotifyRedemption(userID string, req *models.RedemptionRequest) {
	h.hub.send <- &Message{Type: "REDEMPTION_UPDATE", UserID: userID, Data: req}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.UserID] = client.Conn

		case client := <-hub.unregister:
			if conn, ok := hub.clients[client.UserID]; ok && conn == client.Conn {
				delete(hub.clients, client.UserID)
			}

		case message := <-hub.send:
			if conn, ok := hub.clients[message.UserID]; ok {
				conn.WriteJSON(message)
			}
		}
	}
}
