package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/urdf-visualizer/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// WebSocket message types for live actuation
const (
	// Client -> Server messages
	MsgTypeJointsSet   = "joints:set"
	MsgTypeJointsReset = "joints:reset"
	MsgTypePing        = "ping"

	// Server -> Client messages
	MsgTypeConnected  = "connected"
	MsgTypeTransforms = "transforms"
	MsgTypeError      = "error"
	MsgTypePong       = "pong"
)

// WSMessage is the envelope of every text frame.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorResponse is the payload of an error message.
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler streams poses of one robot session and accepts joint
// updates. Every client of a session sees every update, whoever sent it.
type WebSocketHandler struct {
	sessions SessionManager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(sessions SessionManager, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		logger: logger.With("component", "websocket"),
	}
}

// wsConn serializes writes; gorilla connections allow one writer at a time.
type wsConn struct {
	ws     *websocket.Conn
	mu     sync.Mutex
	binary bool
}

func (c *wsConn) send(msg WSMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(msg)
}

func (c *wsConn) sendPayload(msgType, id string, payload interface{}) error {
	return c.send(WSMessage{Type: msgType, ID: id, Payload: mustJSON(payload)})
}

func (c *wsConn) sendError(id, message, code string) error {
	return c.sendPayload(MsgTypeError, id, WSErrorResponse{Message: message, Code: code})
}

// sendSnapshot writes a transforms message, as a MessagePack binary frame
// when the client asked for it.
func (c *wsConn) sendSnapshot(snap *models.PoseSnapshot) error {
	if !c.binary {
		return c.sendPayload(MsgTypeTransforms, "", snap)
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

// HandleWebSocket upgrades the connection for /api/ws/robots/:id.
// ?format=msgpack switches pose frames to binary MessagePack.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	id := c.Param("id")
	info, ok := wsh.sessions.Get(id)
	if !ok {
		return NewNotFoundError("robot", id)
	}

	updates, cancel, err := wsh.sessions.Subscribe(id)
	if err != nil {
		return FromError("failed to subscribe", err)
	}
	defer cancel()

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // the upgrader already replied
	}
	defer ws.Close()

	conn := &wsConn{ws: ws, binary: c.QueryParam("format") == "msgpack"}
	log := wsh.logger.With("session", id, "remote", c.RealIP())
	log.Info("client connected", "binary", conn.binary)

	_ = conn.sendPayload(MsgTypeConnected, "", info)
	if snap, err := wsh.sessions.Transforms(id); err == nil {
		_ = conn.sendSnapshot(snap)
	}

	var leaving atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		for snap := range updates {
			if err := conn.sendSnapshot(snap); err != nil {
				return
			}
		}
		if !leaving.Load() {
			_ = conn.sendError("", "robot session closed", "NOT_FOUND")
			ws.Close()
		}
	}()

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection error", "error", err)
			}
			break
		}
		wsh.sessions.Touch(id)
		wsh.handleMessage(c, conn, id, msg)
	}

	leaving.Store(true)
	cancel()
	<-done
	log.Info("client disconnected")
	return nil
}

// handleMessage answers one client message. Successful actuation is
// answered through the subscription, like updates from other clients.
func (wsh *WebSocketHandler) handleMessage(c echo.Context, conn *wsConn, id string, msg WSMessage) {
	ctx := c.Request().Context()

	switch msg.Type {
	case MsgTypePing:
		_ = conn.send(WSMessage{Type: MsgTypePong, ID: msg.ID})

	case MsgTypeJointsSet:
		var req setJointsRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			_ = conn.sendError(msg.ID, "invalid joints payload: "+err.Error(), "BAD_REQUEST")
			return
		}
		if len(req.Values) == 0 {
			_ = conn.sendError(msg.ID, "validation failed for field: values", "VALIDATION_ERROR")
			return
		}
		if _, err := wsh.sessions.SetJointValues(ctx, id, req.Values); err != nil {
			apiErr := FromError("failed to set joints", err)
			_ = conn.sendError(msg.ID, apiErr.Details, apiErr.Code)
		}

	case MsgTypeJointsReset:
		if _, err := wsh.sessions.ResetJoints(ctx, id); err != nil {
			apiErr := FromError("failed to reset joints", err)
			_ = conn.sendError(msg.ID, apiErr.Details, apiErr.Code)
		}

	default:
		_ = conn.sendError(msg.ID, "Unknown message type: "+msg.Type, "INVALID_TYPE")
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(WSErrorResponse{Message: err.Error(), Code: "INTERNAL_ERROR"})
	}
	return data
}
