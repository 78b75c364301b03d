package broadcast

// BroadcastChannel is the Redis channel carrying room emissions between
// server instances
const BroadcastChannel = "tambola:broadcast"

// SessionSendBuffer bounds each session's outbound queue; a full queue
// drops events instead of blocking the room
const SessionSendBuffer = 64

// Log messages
const (
	LogMsgPublishFailed = "Failed to publish broadcast, delivering locally only"
	LogMsgBadEnvelope   = "Dropping malformed broadcast envelope"
)
