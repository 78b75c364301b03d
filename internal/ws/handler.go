// Package ws is the socket ingress: it upgrades connections, keeps them
// alive with pings, and dispatches inbound events to the game engine. A
// handler failure emits one typed error event to the offending socket only;
// nothing tears down the connection or the process.
package ws

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/broadcast"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/engine"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/protocol"
)

// Handler upgrades and serves game socket connections
type Handler struct {
	engine   engine.Service
	hub      *broadcast.Hub
	validate *validator.Validate
	upgrader websocket.Upgrader
}

// NewHandler creates the socket handler. allowedOrigins gates the upgrade
// handshake; an empty list allows same-host requests only.
func NewHandler(engineSvc engine.Service, hub *broadcast.Hub, allowedOrigins []string) *Handler {
	h := &Handler{
		engine:   engineSvc,
		hub:      hub,
		validate: newValidator(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// originChecker matches the Origin header host against the allow list.
// Requests without an Origin header (non-browser clients) pass.
func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := false
	hosts := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			allowAll = true
			continue
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			hosts[u.Host] = true
		} else {
			hosts[origin] = true
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host || hosts[u.Host]
	}
}

// ServeHTTP performs the handshake: the client identifies itself with a
// userId query parameter, any syntactically valid UUID is accepted.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userID, err := uuid.Parse(r.URL.Query().Get(QueryParamUserID))
	if err != nil {
		http.Error(w, ErrMsgMissingUserID, http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		log.Warn(LogMsgUpgradeFailed, "error", err)
		return
	}

	session := broadcast.NewSession(userID)
	h.hub.Register(session)
	log.Info(LogMsgConnectionOpened, "session_id", session.ID, "user_id", userID)

	go h.writePump(conn, session)
	go h.readPump(conn, session)
}

// readPump consumes inbound frames until the connection dies. The pong
// deadline is the liveness check matching the write pump's pings.
func (h *Handler) readPump(conn *websocket.Conn, session *broadcast.Session) {
	ctx := logger.WithRequestID(context.Background(), session.ID)
	log := logger.FromContext(ctx)

	defer func() {
		h.hub.Unregister(session.ID)
		_ = conn.Close()
		log.Info(LogMsgConnectionClosed, "session_id", session.ID)
	}()

	conn.SetReadLimit(MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(PongTimeout))
	})

	for {
		var envelope protocol.Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug(LogMsgReadLoopEnded, "session_id", session.ID, "error", err)
			}
			return
		}
		h.dispatch(ctx, session, envelope)
	}
}

// writePump drains the session's outbound queue and keeps the connection
// alive. Exits when the hub closes the send channel on unregister.
func (h *Handler) writePump(conn *websocket.Conn, session *broadcast.Session) {
	ticker := time.NewTicker(PingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-session.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				logger.FromContext(context.Background()).Debug(LogMsgWriteFailed, "session_id", session.ID, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
