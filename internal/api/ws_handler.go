package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskhub/internal/api/middleware"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/realtime"
	"github.com/phrazzld/taskhub/internal/redact"
)

// Client-to-server websocket events.
const (
	wsEventJoin  = "join"
	wsEventLeave = "leave"
)

// JoinedPayload is the data of the "joined" acknowledgement.
type JoinedPayload struct {
	UserID uuid.UUID `json:"userId"`
}

// WSHandler upgrades authenticated requests to websocket connections and
// binds them to the caller's user ID in the registry.
type WSHandler struct {
	registry   realtime.Registry
	upgrader   websocket.Upgrader
	sendBuffer int
	logger     *slog.Logger
}

// NewWSHandler creates a new WSHandler. Handshakes are accepted from
// allowedOrigins only ("*" allows any).
func NewWSHandler(
	registry realtime.Registry,
	allowedOrigins []string,
	sendBuffer int,
	logger *slog.Logger,
) *WSHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for WSHandler")
	}
	return &WSHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		sendBuffer: sendBuffer,
		logger:     logger.With(slog.String("component", "ws_handler")),
	}
}

// Serve handles GET /ws. It blocks for the lifetime of the connection.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := requirePrincipal(w, r, log)
	if !ok {
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Debug("websocket upgrade failed", redact.ErrorAttr(err))
		return
	}

	conn := realtime.NewConn(ws, h.sendBuffer, log)
	log.Debug("websocket connected")

	conn.Run(func(msg realtime.Message) {
		h.handleMessage(conn, principal, msg, log)
	})

	h.registry.Unregister(principal.ID, conn)
	log.Debug("websocket disconnected")
}

func (h *WSHandler) handleMessage(conn *realtime.Conn, principal domain.Principal, msg realtime.Message, log *slog.Logger) {
	switch msg.Event {
	case wsEventJoin:
		userID, err := parseJoinUserID(msg.Data)
		if err != nil {
			conn.Send(realtime.EventError, realtime.ErrorPayload{Message: "join requires a user ID"})
			return
		}
		if userID == uuid.Nil {
			userID = principal.ID
		}
		if userID != principal.ID {
			log.Warn("websocket join for another user rejected",
				slog.String("requested_user_id", userID.String()))
			conn.Send(realtime.EventError, realtime.ErrorPayload{Message: "cannot join another user's channel"})
			return
		}
		h.registry.Register(principal.ID, conn)
		conn.Send(realtime.EventJoined, JoinedPayload{UserID: principal.ID})

	case wsEventLeave:
		h.registry.Unregister(principal.ID, conn)

	default:
		conn.Send(realtime.EventError, realtime.ErrorPayload{Message: "unknown event " + msg.Event})
	}
}

// parseJoinUserID accepts the user ID as a bare JSON string or as
// {"userId": "..."}. An empty payload joins the caller's own channel.
func parseJoinUserID(data json.RawMessage) (uuid.UUID, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return uuid.Nil, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var obj struct {
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return uuid.Nil, err
		}
		s = obj.UserID
	}
	return uuid.Parse(s)
}
