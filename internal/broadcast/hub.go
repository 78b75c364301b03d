// Package broadcast fans events out to connected sockets. A Hub tracks the
// sessions of this instance and their room membership; cross-instance
// delivery goes through a pluggable PubSub adapter so every instance behind
// the load balancer sees every room emission.
package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/logger"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/metrics"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/protocol"
)

// Session represents one connected socket on this instance
type Session struct {
	ID     string
	UserID uuid.UUID
	Send   chan protocol.OutboundMessage
}

// NewSession creates a session with a buffered outbound channel
func NewSession(userID uuid.UUID) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Send:   make(chan protocol.OutboundMessage, SessionSendBuffer),
	}
}

// Hub manages socket sessions and per-game rooms
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	rooms    map[string]map[string]*Session
	pubsub   PubSub
	closed   bool
}

// NewHub creates a Hub wired to the given pub/sub adapter
func NewHub(pubsub PubSub) *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]*Session),
		pubsub:   pubsub,
	}
}

// Start begins consuming cross-instance emissions
func (h *Hub) Start(ctx context.Context) error {
	return h.pubsub.Subscribe(ctx, h.deliverLocal)
}

// Stop closes the pub/sub subscription and every session channel
func (h *Hub) Stop() {
	h.pubsub.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, session := range h.sessions {
		close(session.Send)
	}
	h.sessions = make(map[string]*Session)
	h.rooms = make(map[string]map[string]*Session)
}

// Register adds a session to the registry
func (h *Hub) Register(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.sessions[session.ID] = session
	metrics.SocketsConnected.Inc()
}

// Unregister removes a session from the registry and every room
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(h.sessions, sessionID)
	for room, members := range h.rooms {
		if _, in := members[sessionID]; in {
			delete(members, sessionID)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(session.Send)
	metrics.SocketsConnected.Dec()
}

// JoinRoom adds a session to a game room
func (h *Hub) JoinRoom(sessionID string, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Session)
		h.rooms[room] = members
	}
	members[sessionID] = session
}

// LeaveRoom removes a session from a game room
func (h *Hub) LeaveRoom(sessionID string, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// CloseRoom drops every member of a room so no per-game state lingers in
// the registry. Terminal game events trigger it after delivery.
func (h *Hub) CloseRoom(room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, room)
}

// EmitRoom delivers an event to every member of the game's room on every
// instance. Implements the broadcaster the game engine depends on.
func (h *Hub) EmitRoom(ctx context.Context, gameID uuid.UUID, event string, payload interface{}) {
	room := protocol.RoomName(gameID)
	if err := h.pubsub.Publish(ctx, room, event, payload); err != nil {
		// Local members still get the event; remote instances miss this one
		logger.FromContext(ctx).Error(LogMsgPublishFailed, "room", room, "event", event, "error", err)
		h.deliverLocal(room, protocol.OutboundMessage{Event: event, Data: payload})
	}
}

// SendTo delivers an event to a single session on this instance only.
// Used for acks to the originating caller.
func (h *Hub) SendTo(sessionID string, event string, payload interface{}) {
	h.mu.RLock()
	session, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.send(session, protocol.OutboundMessage{Event: event, Data: payload})
}

// deliverLocal fans a room emission out to this instance's members
func (h *Hub) deliverLocal(room string, msg protocol.OutboundMessage) {
	h.mu.RLock()
	members := make([]*Session, 0, len(h.rooms[room]))
	for _, session := range h.rooms[room] {
		members = append(members, session)
	}
	h.mu.RUnlock()

	for _, session := range members {
		h.send(session, msg)
	}
	metrics.EventsBroadcast.WithLabelValues(msg.Event).Inc()

	// Every instance consumes the emission, so closing here tears the room
	// down cluster-wide
	if msg.Event == protocol.EventCompleted || msg.Event == protocol.EventCancelled {
		h.CloseRoom(room)
	}
}

// send is non-blocking: a session that cannot keep up drops events rather
// than stalling the whole room
func (h *Hub) send(session *Session, msg protocol.OutboundMessage) {
	select {
	case session.Send <- msg:
	default:
		metrics.EventsDropped.Inc()
	}
}

// SessionCount returns the number of connected sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// RoomSize returns the number of members in a room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
