package prize

import "time"

// MaxAttempts caps payout attempts before an item is dead-lettered
const MaxAttempts = 3

// RetryDelays holds the backoff before attempt 2, 3, ... Index by
// attempts-1 after a failed attempt.
var RetryDelays = []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}

// ProcessingLease bounds how long an item may sit in PROCESSING before the
// reaper returns it to PENDING
const ProcessingLease = 60 * time.Second

// OrphanAge is how long a PENDING item may go untouched before the reaper
// re-schedules it. Covers items whose retry timer died with the process.
const OrphanAge = 60 * time.Second

// ReaperBatchSize bounds how many orphaned rows one reaper pass reschedules
const ReaperBatchSize = 100

// HeaderIdempotencyKey carries the deduplication token to the payout API
const HeaderIdempotencyKey = "Idempotency-Key"

// Error context messages
const (
	ErrContextFailedToEnqueue      = "failed to enqueue prize"
	ErrContextFailedToLoadItem     = "failed to load prize queue item"
	ErrContextFailedToUpdateItem   = "failed to update prize queue item"
	ErrContextFailedToInvokePayout = "payout request failed"
	ErrContextFailedToRecoverStale = "failed to recover stale prize items"
)

// Log messages
const (
	LogMsgPrizeEnqueued       = "Prize payout enqueued"
	LogMsgPayoutCompleted     = "Prize payout completed"
	LogMsgPayoutAttemptFailed = "Prize payout attempt failed"
	LogMsgPayoutDeadLettered  = "Prize payout dead-lettered"
	LogMsgPayoutRetryReset    = "Prize payout manually reset for retry"
	LogMsgStaleItemsRecovered = "Stale prize items recovered"
	LogMsgOrphanRescheduled   = "Orphaned pending prize rescheduled"
)
