package worker

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// Log messages for prize worker operations
const (
	LogMsgPrizeRetryScheduled = "Prize retry scheduled"
	LogMsgPrizeProcessFailed  = "Prize processing failed"
)
