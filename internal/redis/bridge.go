package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/metrics"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
)

// eventsChannel carries every room event between instances. A single
// channel keeps subscription management trivial; the room key travels in
// the envelope.
const eventsChannel = "realtime:events"

// bridgeEnvelope is the Pub/Sub wire format. Origin lets an instance skip
// the events it published itself.
type bridgeEnvelope struct {
	Origin  string           `json:"origin"`
	Room    string           `json:"room"`
	Message realtime.Message `json:"message"`
}

// Bridge fans room events out across instances via Redis Pub/Sub. Publish
// sends local events to the channel; Run relays remote events into the
// local registry.
type Bridge struct {
	rdb        *redis.Client
	registry   *realtime.Registry
	instanceID string
}

// NewBridge creates a bridge bound to the local registry.
func NewBridge(rdb *redis.Client, registry *realtime.Registry) *Bridge {
	return &Bridge{
		rdb:        rdb,
		registry:   registry,
		instanceID: uuid.NewString(),
	}
}

// Publish sends a room event to the shared channel. Failures are returned
// for the caller to log; local delivery has already happened by then.
func (b *Bridge) Publish(ctx context.Context, roomSlug string, msg realtime.Message) error {
	env := bridgeEnvelope{Origin: b.instanceID, Room: roomSlug, Message: msg}
	data, err := json.Marshal(env)
	if err != nil {
		metrics.BridgeErrorsTotal.WithLabelValues("publish").Inc()
		return fmt.Errorf("failed to marshal bridge envelope: %w", err)
	}

	if err := b.rdb.Publish(ctx, eventsChannel, data).Err(); err != nil {
		metrics.BridgeErrorsTotal.WithLabelValues("publish").Inc()
		return fmt.Errorf("failed to publish bridge event: %w", err)
	}

	metrics.BridgePublishedTotal.Inc()
	return nil
}

// Run subscribes to the shared channel and relays remote events into the
// local registry until ctx is canceled. Intended to run as a goroutine for
// the process lifetime.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, eventsChannel)
	defer func() { _ = sub.Close() }()

	slog.Info("Bridge subscribed", "channel", eventsChannel, "instance_id", b.instanceID)

	msgCh := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Bridge stopped", "instance_id", b.instanceID)
			return
		case msg, ok := <-msgCh:
			if !ok {
				slog.Warn("Bridge subscription channel closed", "instance_id", b.instanceID)
				return
			}

			var env bridgeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				metrics.BridgeErrorsTotal.WithLabelValues("decode").Inc()
				slog.Error("Failed to decode bridge event", "error", err)
				continue
			}

			if env.Origin == b.instanceID {
				continue
			}

			metrics.BridgeReceivedTotal.Inc()
			b.registry.Broadcast(env.Room, env.Message)
		}
	}
}
