package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebSocket connection metrics
var (
	// WebSocketActiveConnections tracks currently connected sessions
	WebSocketActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_active_connections",
			Help: "Currently open WebSocket sessions",
		},
	)

	// WebSocketConnectionsTotal tracks accepted connections over process lifetime
	WebSocketConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_connections_total",
			Help: "Total accepted WebSocket connections",
		},
	)

	// WebSocketConnectionsRejected tracks upgrades refused by connection limits
	WebSocketConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_connections_rejected_total",
			Help: "WebSocket upgrades rejected by limiter, by reason",
		},
		[]string{"reason"},
	)

	// WebSocketMalformedFramesTotal tracks client frames that failed to decode
	WebSocketMalformedFramesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_malformed_frames_total",
			Help: "Client frames dropped because they failed to decode",
		},
	)

	// WebSocketMessageSendDuration tracks single frame write latency
	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "WebSocket frame write duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)
)

// Room registry metrics
var (
	// RoomSubscribers tracks live subscribers per room
	RoomSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "room_subscribers",
			Help: "Live subscribers per room",
		},
		[]string{"room"},
	)

	// BroadcastMessagesTotal tracks messages fanned out, by message type
	BroadcastMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_messages_total",
			Help: "Messages broadcast into rooms, by message type",
		},
		[]string{"type"},
	)

	// BroadcastDroppedTotal tracks messages skipped by lagging subscribers
	BroadcastDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_dropped_total",
			Help: "Messages dropped because a subscriber buffer was full",
		},
	)

	// BroadcastNoSubscribersTotal tracks broadcasts into empty rooms
	BroadcastNoSubscribersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_no_subscribers_total",
			Help: "Broadcasts dropped because the room had no live subscribers",
		},
	)
)

// Cross-instance bridge metrics
var (
	// BridgePublishedTotal tracks events published to the Redis channel
	BridgePublishedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_published_total",
			Help: "Events published to the cross-instance bridge",
		},
	)

	// BridgeReceivedTotal tracks remote events relayed into the local registry
	BridgeReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_received_total",
			Help: "Remote bridge events relayed into the local registry",
		},
	)

	// BridgeErrorsTotal tracks publish/decode failures on the bridge
	BridgeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_errors_total",
			Help: "Bridge failures by kind (publish, decode)",
		},
		[]string{"kind"},
	)
)

// Database metrics (recorded by the pgx query tracer)
var (
	// DBQueryDuration tracks query latency by simplified query name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds by query name",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks failed queries by simplified query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total failed database queries by query name",
		},
		[]string{"query"},
	)
)

// Redis client metrics (recorded by the metrics hook)
var (
	// RedisOpsTotal tracks Redis commands by operation and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis command latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// CircuitBreakerStateChanges tracks breaker transitions by component and new state
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
