package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialSession runs a session server and dials it. The returned channel
// closes when Run returns.
func dialSession(t *testing.T, reg *Registry, clock clockwork.Clock, rooms string) (*ws.Conn, <-chan struct{}) {
	t.Helper()

	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	done := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}

		var initial []string
		if raw := r.URL.Query().Get("rooms"); raw != "" {
			initial = strings.Split(raw, ",")
		}

		session := NewSession(reg, conn, clock)
		session.Run(r.Context(), initial)
		close(done)
	}))
	t.Cleanup(func() { server.Close() })

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?rooms=" + rooms
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, done
}

func readMessage(t *testing.T, conn *ws.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeCommand(t *testing.T, conn *ws.Conn, cmd ClientCommand) {
	t.Helper()

	data, err := EncodeClientCommand(cmd)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(ws.TextMessage, data))
}

func waitForConnections(t *testing.T, reg *Registry, expected int) {
	t.Helper()

	for i := 0; i < 200; i++ {
		if reg.TotalConnections() == expected {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("registry never reached %d connections", expected)
}

func TestSessionConnectedThenSubscribed(t *testing.T) {
	reg := NewRegistry()
	conn, _ := dialSession(t, reg, clockwork.NewRealClock(), "day-trading,swing-trading")

	msg := readMessage(t, conn)
	require.Equal(t, TypeConnected, msg.Type)
	connected, ok := msg.Payload.(*ConnectedEvent)
	require.True(t, ok)
	assert.NotEmpty(t, connected.ConnectionID)
	assert.Equal(t, []string{"day-trading", "swing-trading"}, connected.Rooms)

	first := readMessage(t, conn)
	require.Equal(t, TypeSubscribed, first.Type)
	assert.Equal(t, "day-trading", first.Payload.(*SubscribedEvent).Room)

	second := readMessage(t, conn)
	require.Equal(t, TypeSubscribed, second.Type)
	assert.Equal(t, "swing-trading", second.Payload.(*SubscribedEvent).Room)

	assert.Equal(t, 2, reg.TotalConnections())
}

func TestSessionReceivesRoomBroadcast(t *testing.T) {
	reg := NewRegistry()
	conn, _ := dialSession(t, reg, clockwork.NewRealClock(), "day-trading")

	require.Equal(t, TypeConnected, readMessage(t, conn).Type)
	require.Equal(t, TypeSubscribed, readMessage(t, conn).Type)

	reg.Broadcast("day-trading", NewAlertDeleted(11))

	msg := readMessage(t, conn)
	require.Equal(t, TypeAlertDeleted, msg.Type)
	assert.Equal(t, int64(11), msg.Payload.(*AlertDeletedEvent).AlertID)
}

func TestSessionDynamicSubscribe(t *testing.T) {
	reg := NewRegistry()
	conn, _ := dialSession(t, reg, clockwork.NewRealClock(), "")

	require.Equal(t, TypeConnected, readMessage(t, conn).Type)

	writeCommand(t, conn, SubscribeCommand{Room: "options"})

	msg := readMessage(t, conn)
	require.Equal(t, TypeSubscribed, msg.Type)
	assert.Equal(t, "options", msg.Payload.(*SubscribedEvent).Room)

	reg.Broadcast("options", NewHeartbeat(100))
	assert.Equal(t, TypeHeartbeat, readMessage(t, conn).Type)
}

func TestSessionDoubleSubscribeDeliversOnce(t *testing.T) {
	reg := NewRegistry()
	conn, _ := dialSession(t, reg, clockwork.NewRealClock(), "options")

	require.Equal(t, TypeConnected, readMessage(t, conn).Type)
	require.Equal(t, TypeSubscribed, readMessage(t, conn).Type)

	// A duplicate subscribe is silently ignored
	writeCommand(t, conn, SubscribeCommand{Room: "options"})
	writeCommand(t, conn, PingCommand{Timestamp: 1})

	// Only the ping response arrives, no second Subscribed confirmation
	assert.Equal(t, TypeHeartbeat, readMessage(t, conn).Type)
	assert.Equal(t, 1, reg.TotalConnections())
}

func TestSessionUnsubscribeStopsDelivery(t *testing.T) {
	reg := NewRegistry()
	conn, _ := dialSession(t, reg, clockwork.NewRealClock(), "options")

	require.Equal(t, TypeConnected, readMessage(t, conn).Type)
	require.Equal(t, TypeSubscribed, readMessage(t, conn).Type)

	writeCommand(t, conn, UnsubscribeCommand{Room: "options"})

	msg := readMessage(t, conn)
	require.Equal(t, TypeUnsubscribed, msg.Type)
	assert.Equal(t, "options", msg.Payload.(*UnsubscribedEvent).Room)

	waitForConnections(t, reg, 0)
	reg.Broadcast("options", NewAlertDeleted(11))

	// The broadcast went nowhere; the next frame is the ping response
	writeCommand(t, conn, PingCommand{Timestamp: 2})
	assert.Equal(t, TypeHeartbeat, readMessage(t, conn).Type)
}

func TestSessionPingAnswersHeartbeat(t *testing.T) {
	reg := NewRegistry()
	conn, _ := dialSession(t, reg, clockwork.NewRealClock(), "")

	require.Equal(t, TypeConnected, readMessage(t, conn).Type)

	writeCommand(t, conn, PingCommand{Timestamp: 1700000000})

	msg := readMessage(t, conn)
	require.Equal(t, TypeHeartbeat, msg.Type)
	assert.NotZero(t, msg.Payload.(*HeartbeatEvent).Timestamp)
}

func TestSessionMalformedFramesAreDropped(t *testing.T) {
	reg := NewRegistry()
	conn, _ := dialSession(t, reg, clockwork.NewRealClock(), "")

	require.Equal(t, TypeConnected, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"action":"Shout","data":{}}`)))

	// The session survives and keeps answering
	writeCommand(t, conn, PingCommand{Timestamp: 3})
	assert.Equal(t, TypeHeartbeat, readMessage(t, conn).Type)
}

func TestSessionDisconnectReleasesSubscriptions(t *testing.T) {
	reg := NewRegistry()
	conn, done := dialSession(t, reg, clockwork.NewRealClock(), "day-trading")

	require.Equal(t, TypeConnected, readMessage(t, conn).Type)
	require.Equal(t, TypeSubscribed, readMessage(t, conn).Type)
	require.Equal(t, 1, reg.TotalConnections())

	require.NoError(t, conn.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not shut down after disconnect")
	}
	waitForConnections(t, reg, 0)
}

func TestSessionHeartbeatCadence(t *testing.T) {
	reg := NewRegistry()
	clock := clockwork.NewFakeClockAt(time.Now())
	conn, _ := dialSession(t, reg, clock, "")

	require.Equal(t, TypeConnected, readMessage(t, conn).Type)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(heartbeatInterval)

	msg := readMessage(t, conn)
	assert.Equal(t, TypeHeartbeat, msg.Type)
}
