package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/internal/utils"
	"github.com/projecthub/backend/pkg/logger"
	"github.com/projecthub/backend/pkg/response"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin in development; token auth
	// is the access control, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsControlMessage is the client-to-server control frame: channel
// subscribe/unsubscribe plus the transient typing indicator.
type wsControlMessage struct {
	Type      string `json:"type"` // join-personal, join-project, leave-project, typing, stop-typing
	ProjectID uint   `json:"project_id"`
	TaskID    uint   `json:"task_id,omitempty"`
}

// WSHandler serves the relay's persistent channel.
type WSHandler struct {
	hub            *services.RelayHub
	projectService *services.ProjectService
}

func NewWSHandler(hub *services.RelayHub, projectService *services.ProjectService) *WSHandler {
	return &WSHandler{hub: hub, projectService: projectService}
}

// Serve upgrades the connection and relays events until the client
// disconnects. The personal channel is joined from the token; project
// channels are joined on request after a membership check.
// GET /api/ws?token=...
func (h *WSHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "token required")
		return
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid token")
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := uuid.New().String()
	events := h.hub.Register(clientID)
	h.hub.Join(clientID, services.UserChannel(claims.UserID))
	defer h.hub.Unregister(clientID)

	logger.Info().
		Str("client_id", clientID).
		Uint("user_id", claims.UserID).
		Int("total", h.hub.ClientCount()).
		Msg("relay client connected")

	go h.writePump(conn, events)
	h.readPump(conn, clientID, claims)

	logger.Info().Str("client_id", clientID).Msg("relay client disconnected")
}

// writePump forwards hub events to the socket and keeps the connection
// alive with pings. It exits when the event channel closes
// (unregister) or a write fails.
func (h *WSHandler) writePump(conn *websocket.Conn, events <-chan services.RelayEvent) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes control frames until the connection drops.
func (h *WSHandler) readPump(conn *websocket.Conn, clientID string, claims *utils.Claims) {
	defer conn.Close()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg wsControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "join-personal":
			// Already joined at connect time; accepted for clients that
			// resubscribe explicitly.
			h.hub.Join(clientID, services.UserChannel(claims.UserID))
		case "join-project":
			// Membership gate: joining an arbitrary project channel
			// would leak task and comment activity.
			if _, err := h.projectService.GetByID(claims.UserID, msg.ProjectID); err != nil {
				continue
			}
			h.hub.Join(clientID, services.ProjectChannel(msg.ProjectID))
		case "leave-project":
			h.hub.Leave(clientID, services.ProjectChannel(msg.ProjectID))
		case "typing":
			h.hub.Publish(services.ProjectChannel(msg.ProjectID), services.RelayEvent{
				Type: services.EventUserTyping,
				Payload: map[string]interface{}{
					"task_id":   msg.TaskID,
					"user_name": claims.Name,
				},
			})
		case "stop-typing":
			h.hub.Publish(services.ProjectChannel(msg.ProjectID), services.RelayEvent{
				Type:    services.EventUserStoppedTyping,
				Payload: map[string]interface{}{"task_id": msg.TaskID},
			})
		}
	}
}
