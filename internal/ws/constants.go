package ws

import "time"

// Keepalive tuning, mobile-friendly: clients on flaky radios get a ping
// every 15s and are dropped 20s after the last pong
const (
	PingInterval = 15 * time.Second
	PongTimeout  = 20 * time.Second

	// WriteWait bounds a single frame write
	WriteWait = 10 * time.Second

	// MaxMessageSize bounds inbound frames; game events are tiny
	MaxMessageSize = 4096
)

// QueryParamUserID carries the handshake identity
const QueryParamUserID = "userId"

// Error messages
const (
	ErrMsgMissingUserID  = "missing or malformed userId"
	ErrMsgUnknownEvent   = "unknown event"
	ErrMsgMalformedEvent = "malformed event payload"
	MsgInternalError     = "internal error"
	MsgClaimAccepted     = "claim accepted"
)

// Log messages
const (
	LogMsgConnectionOpened     = "Socket connected"
	LogMsgConnectionClosed     = "Socket disconnected"
	LogMsgUpgradeFailed        = "Websocket upgrade failed"
	LogMsgWriteFailed          = "Failed to write to socket"
	LogMsgEventHandlerFailed   = "Inbound event handler failed"
	LogMsgEventHandlerPanicked = "Inbound event handler panicked"
	LogMsgReadLoopEnded        = "Socket read loop ended"
)
