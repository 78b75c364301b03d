package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidLimit      = "Invalid limit parameter"
	ErrMsgInvalidStatus     = "Invalid status parameter"
	ErrMsgInvalidUserID     = "Invalid user ID"
	ErrMsgInvalidItemID     = "Invalid item ID"

	// Game operation error messages
	ErrMsgCreateGameFailed = "Failed to create game"
	ErrMsgListGamesFailed  = "Failed to list games"
	ErrMsgVIPOnly          = "Games listing is limited to VIP members"

	// Prize queue error messages
	ErrMsgRetryPrizeFailed = "Failed to retry prize item"
	ErrMsgListPrizesFailed = "Failed to list prize queue"
)

// Success messages for API responses
const (
	MsgPrizeRetryScheduled = "Prize item scheduled for retry"
)
