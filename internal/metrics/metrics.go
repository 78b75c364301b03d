package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Socket Metrics
var (
	SocketsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameSocketsConnected,
			Help: HelpTextSocketsConnected,
		},
	)

	EventsBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsBroadcast,
			Help: HelpTextEventsBroadcast,
		},
		[]string{LabelEvent},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEventsDropped,
			Help: HelpTextEventsDropped,
		},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelEvent},
	)
)

// Game Metrics
var (
	GamesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameGamesStarted,
			Help: HelpTextGamesStarted,
		},
	)

	GamesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGamesCompleted,
			Help: HelpTextGamesCompleted,
		},
		[]string{LabelStatus},
	)

	PlayersJoined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePlayersJoined,
			Help: HelpTextPlayersJoined,
		},
	)

	NumbersCalled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameNumbersCalled,
			Help: HelpTextNumbersCalled,
		},
	)

	ClaimsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameClaimsAccepted,
			Help: HelpTextClaimsAccepted,
		},
		[]string{LabelCategory},
	)

	ClaimsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameClaimsRejected,
			Help: HelpTextClaimsRejected,
		},
		[]string{LabelCategory, LabelReason},
	)
)

// Prize Metrics
var (
	PrizesEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePrizesEnqueued,
			Help: HelpTextPrizesEnqueued,
		},
	)

	PrizePayouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePrizePayouts,
			Help: HelpTextPrizePayouts,
		},
		[]string{LabelResult},
	)

	PrizesDeadLettered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePrizesDeadLettered,
			Help: HelpTextPrizesDeadLettered,
		},
	)

	PrizesRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePrizesRecovered,
			Help: HelpTextPrizesRecovered,
		},
	)
)
