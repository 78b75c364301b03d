// Package protocol defines the socket wire protocol: event names and the
// JSON payloads exchanged with game clients.
package protocol

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
)

// Inbound event names (client -> server)
const (
	EventJoin       = "game:join"
	EventLeave      = "game:leave"
	EventStart      = "game:start"
	EventCallNumber = "game:callNumber"
	EventMarkNumber = "game:markNumber"
	EventClaimWin   = "game:claimWin"
	EventCancel     = "game:cancel"
)

// Outbound event names (server -> client)
const (
	EventJoined       = "game:joined"
	EventCallAck      = "game:callAck"
	EventStateSync    = "game:stateSync"
	EventPlayerJoined = "game:playerJoined"
	EventStarted      = "game:started"
	EventNumberCalled = "game:numberCalled"
	EventWinClaimed   = "game:winClaimed"
	EventWinner       = "game:winner"
	EventCompleted    = "game:completed"
	EventCancelled    = "game:cancelled"
	EventError        = "error"
)

// Envelope is the framing for every inbound socket message
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutboundMessage is the framing for every outbound socket message
type OutboundMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Inbound payloads

type JoinRequest struct {
	GameID   string `json:"gameId" validate:"required,uuid4"`
	UserName string `json:"userName" validate:"omitempty,max=50"`
}

type LeaveRequest struct {
	GameID string `json:"gameId" validate:"required,uuid4"`
}

type StartRequest struct {
	GameID string `json:"gameId" validate:"required,uuid4"`
}

// CallNumberRequest deliberately leaves Number unvalidated: range checks
// belong to the call flow so a bad value is acked as OUT_OF_RANGE instead
// of bouncing as a generic validation failure
type CallNumberRequest struct {
	GameID string `json:"gameId" validate:"required,uuid4"`
	Number int    `json:"number"`
}

type MarkNumberRequest struct {
	GameID   string `json:"gameId" validate:"required,uuid4"`
	PlayerID string `json:"playerId" validate:"required,uuid4"`
	Number   int    `json:"number" validate:"required,min=1,max=90"`
}

type ClaimWinRequest struct {
	GameID   string `json:"gameId" validate:"required,uuid4"`
	Category string `json:"category" validate:"required,category"`
}

type CancelRequest struct {
	GameID string `json:"gameId" validate:"required,uuid4"`
}

// Outbound payloads

// JoinedPayload acknowledges a join. PlayerID and Ticket are null when the
// caller is the organizer observing the game.
type JoinedPayload struct {
	GameID   uuid.UUID      `json:"gameId"`
	PlayerID *uuid.UUID     `json:"playerId"`
	Ticket   *domain.Ticket `json:"ticket"`
}

type PlayerInfo struct {
	PlayerID uuid.UUID `json:"playerId"`
	UserName string    `json:"userName"`
}

type WinnerInfo struct {
	PlayerID uuid.UUID       `json:"playerId"`
	UserName string          `json:"userName"`
	Category domain.Category `json:"category"`
}

// StateSyncPayload carries the full visible game state for (re)joining clients
type StateSyncPayload struct {
	CalledNumbers []int        `json:"calledNumbers"`
	CurrentNumber *int         `json:"currentNumber"`
	Players       []PlayerInfo `json:"players"`
	Winners       []WinnerInfo `json:"winners"`
	MarkedNumbers []int        `json:"markedNumbers,omitempty"`
}

type PlayerJoinedPayload struct {
	PlayerID uuid.UUID `json:"playerId"`
	UserName string    `json:"userName"`
}

type StartedPayload struct {
	GameID uuid.UUID `json:"gameId"`
}

type NumberCalledPayload struct {
	Number int `json:"number"`
}

type WinClaimedPayload struct {
	Category domain.Category `json:"category"`
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
}

type WinnerPayload struct {
	PlayerID uuid.UUID       `json:"playerId"`
	UserName string          `json:"userName"`
	Category domain.Category `json:"category"`
}

type CompletedPayload struct {
	GameID uuid.UUID `json:"gameId"`
}

type CancelledPayload struct {
	GameID uuid.UUID `json:"gameId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AckResponse is the callback payload for acknowledged events
type AckResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RoomName returns the broadcast room identifier for a game
func RoomName(gameID uuid.UUID) string {
	return "game:" + gameID.String()
}
