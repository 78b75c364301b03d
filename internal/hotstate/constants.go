package hotstate

import "time"

// Key lifetimes
const (
	// GameStateTTL bounds how long hot keys outlive their last write
	GameStateTTL = 2 * time.Hour

	// WinnerLockTTL is the single-holder claim lock lifetime
	WinnerLockTTL = 5 * time.Second
)

// CleanupScanBatch bounds SCAN page size during key sweeps
const CleanupScanBatch = 100

// Redis hash field names
const (
	fieldStatus        = "status"
	fieldCalledNumbers = "calledNumbers"
	fieldCurrentNumber = "currentNumber"
	fieldPlayerCount   = "playerCount"
)

// VIP cohort membership set
const vipSetKey = "vip:members"

const lockHolderValue = "1"

// Error messages
const (
	ErrMsgInvalidRedisURL  = "invalid redis url"
	ErrMsgRedisUnreachable = "failed to ping redis"
)

// Log messages
const (
	LogMsgSweepCleanupFailed = "Failed to sweep finished game hot state"
)
