package engine

// GameMetaCacheSize bounds the in-process cache of immutable game metadata
// (creator, prizes). Entries are evicted LRU and dropped eagerly when the
// game reaches a terminal status.
const GameMetaCacheSize = 1024

// DefaultListLimit caps game listings when the caller gives no limit
const DefaultListLimit = 50

// Error context messages
const (
	ErrContextFailedToLoadGame         = "failed to load game"
	ErrContextFailedToLoadPlayer       = "failed to load player"
	ErrContextFailedToSaveHotState     = "failed to save hot game state"
	ErrContextFailedToPersistGame      = "failed to persist game update"
	ErrContextFailedToCreatePlayer     = "failed to create player"
	ErrContextFailedToRecordWinner     = "failed to record winner"
	ErrContextFailedToBuildStateSync   = "failed to build state snapshot"
	ErrContextFailedToAcquireClaimLock = "failed to acquire claim lock"
)

// Log messages
const (
	LogMsgGameCreated        = "Game created"
	LogMsgPlayerJoined       = "Player joined game"
	LogMsgGameStarted        = "Game started"
	LogMsgNumberCalled       = "Number called"
	LogMsgWinnerRecorded     = "Winner recorded"
	LogMsgGameCompleted      = "Game completed"
	LogMsgGameCancelled      = "Game cancelled"
	LogMsgPrizeEnqueueFailed = "Failed to enqueue prize payout"
	LogMsgHotSyncBackFailed  = "Failed to sync hot state back to durable store"
	LogMsgHotCleanupFailed   = "Failed to clean up hot game state"
	LogMsgHotRehydrated      = "Rehydrated hot state from durable store"
	LogMsgHotIncrementFailed = "Failed to increment hot player count"
	LogMsgLockReleaseFailed  = "Failed to release claim lock"
)

// Claim rejection reason labels
const (
	ReasonInvalidClaim   = "invalid_claim"
	ReasonAlreadyWon     = "already_won"
	ReasonAlreadyClaimed = "already_claimed"
)
