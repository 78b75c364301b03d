package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Socket metric names
const (
	MetricNameSocketsConnected   = "sockets_connected"
	MetricNameEventsBroadcast    = "events_broadcast_total"
	MetricNameEventsDropped      = "events_dropped_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Game metric names
const (
	MetricNameGamesStarted   = "games_started_total"
	MetricNameGamesCompleted = "games_completed_total"
	MetricNamePlayersJoined  = "players_joined_total"
	MetricNameNumbersCalled  = "numbers_called_total"
	MetricNameClaimsAccepted = "claims_accepted_total"
	MetricNameClaimsRejected = "claims_rejected_total"
)

// Prize metric names
const (
	MetricNamePrizesEnqueued     = "prizes_enqueued_total"
	MetricNamePrizePayouts       = "prize_payouts_total"
	MetricNamePrizesDeadLettered = "prizes_dead_lettered_total"
	MetricNamePrizesRecovered    = "prizes_recovered_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Socket metric help text
const (
	HelpTextSocketsConnected   = "Current number of connected websocket sessions"
	HelpTextEventsBroadcast    = "Total number of room events broadcast"
	HelpTextEventsDropped      = "Total number of events dropped due to slow sessions"
	HelpTextEventHandlerErrors = "Total number of inbound event handler errors"
)

// Game metric help text
const (
	HelpTextGamesStarted   = "Total number of games started"
	HelpTextGamesCompleted = "Total number of games reaching a terminal status"
	HelpTextPlayersJoined  = "Total number of players who joined a game"
	HelpTextNumbersCalled  = "Total number of numbers called across all games"
	HelpTextClaimsAccepted = "Total number of win claims accepted"
	HelpTextClaimsRejected = "Total number of win claims rejected"
)

// Prize metric help text
const (
	HelpTextPrizesEnqueued     = "Total number of prize payouts enqueued"
	HelpTextPrizePayouts       = "Total number of prize payout attempts by result"
	HelpTextPrizesDeadLettered = "Total number of prize payouts moved to the dead letter state"
	HelpTextPrizesRecovered    = "Total number of stale prize leases recovered"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelEvent    = "event"
	LabelCategory = "category"
	LabelReason   = "reason"
	LabelResult   = "result"
)

// Payout result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
