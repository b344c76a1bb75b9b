package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
)

// recordingPublisher captures everything forwarded to the remote side.
type recordingPublisher struct {
	mu    sync.Mutex
	rooms []string
	types []realtime.MessageType
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, roomSlug string, msg realtime.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rooms = append(p.rooms, roomSlug)
	p.types = append(p.types, msg.Type)
	return p.err
}

func TestBroadcasterDeliversLocallyAndRemotely(t *testing.T) {
	registry := realtime.NewRegistry()
	remote := &recordingPublisher{}
	b := New(registry, remote)

	rcv := registry.Subscribe("day-trading")

	b.AlertCreated(context.Background(), realtime.AlertPayload{ID: 5, RoomSlug: "day-trading"})

	select {
	case msg := <-rcv.C:
		require.Equal(t, realtime.TypeAlertCreated, msg.Type)
		event, ok := msg.Payload.(*realtime.AlertEvent)
		require.True(t, ok)
		assert.Equal(t, int64(5), event.Alert.ID)
	default:
		t.Fatal("expected message in room buffer")
	}

	assert.Equal(t, []string{"day-trading"}, remote.rooms)
	assert.Equal(t, []realtime.MessageType{realtime.TypeAlertCreated}, remote.types)
}

func TestBroadcasterNilRemote(t *testing.T) {
	registry := realtime.NewRegistry()
	b := New(registry, nil)

	rcv := registry.Subscribe("day-trading")
	b.StatsUpdated(context.Background(), realtime.StatsPayload{RoomSlug: "day-trading"})

	assert.Len(t, rcv.C, 1)
}

func TestBroadcasterRemoteFailureDoesNotBlockLocal(t *testing.T) {
	registry := realtime.NewRegistry()
	remote := &recordingPublisher{err: errors.New("redis down")}
	b := New(registry, remote)

	rcv := registry.Subscribe("swing-trading")
	b.TradeClosed(context.Background(), realtime.TradePayload{ID: 9, RoomSlug: "swing-trading"})

	assert.Len(t, rcv.C, 1)
}

func TestBroadcasterDeletionEventsTargetTheirRoom(t *testing.T) {
	registry := realtime.NewRegistry()
	remote := &recordingPublisher{}
	b := New(registry, remote)

	rcv := registry.Subscribe("options")
	other := registry.Subscribe("day-trading")

	b.AlertDeleted(context.Background(), "options", 42)
	b.TradePlanDeleted(context.Background(), "options", 7)

	require.Len(t, rcv.C, 2)
	assert.Len(t, other.C, 0)

	msg := <-rcv.C
	require.Equal(t, realtime.TypeAlertDeleted, msg.Type)
	assert.Equal(t, int64(42), msg.Payload.(*realtime.AlertDeletedEvent).AlertID)

	msg = <-rcv.C
	require.Equal(t, realtime.TypeTradePlanDeleted, msg.Type)
	assert.Equal(t, int64(7), msg.Payload.(*realtime.TradePlanDeletedEvent).EntryID)
}
