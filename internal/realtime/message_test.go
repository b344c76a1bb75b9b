package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	title := "Entry alert"
	original := NewAlertCreated(AlertPayload{
		ID:          42,
		RoomSlug:    "day-trading",
		AlertType:   "entry",
		Ticker:      "SPY",
		Title:       &title,
		Message:     "Entered SPY calls",
		IsNew:       true,
		PublishedAt: time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC),
		CreatedAt:   time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC),
	})

	data, err := json.Marshal(original)
	require.NoError(t, err)

	// Wire shape: discriminant plus nested entity key
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"AlertCreated"`, string(raw["type"]))
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["payload"], &payload))
	assert.Contains(t, payload, "alert")

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeAlertCreated, decoded.Type)

	event, ok := decoded.Payload.(*AlertEvent)
	require.True(t, ok)
	assert.Equal(t, int64(42), event.Alert.ID)
	assert.Equal(t, "day-trading", event.Alert.RoomSlug)
	require.NotNil(t, event.Alert.Title)
	assert.Equal(t, "Entry alert", *event.Alert.Title)
}

func TestMessageDeletionPayloadsCarryIDs(t *testing.T) {
	data, err := json.Marshal(NewAlertDeleted(7))
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	event, ok := decoded.Payload.(*AlertDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(7), event.AlertID)

	data, err = json.Marshal(NewTradePlanDeleted(9))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	planEvent, ok := decoded.Payload.(*TradePlanDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(9), planEvent.EntryID)
}

func TestMessageUnknownTypeRejected(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"type":"RoomExploded","payload":{}}`), &msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown message type")
}

func TestConnectedMessageShape(t *testing.T) {
	msg := NewConnected("abc-123", []string{"alpha", "beta"}, 1700000000)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "Connected",
		"payload": {"connection_id": "abc-123", "rooms": ["alpha", "beta"], "timestamp": 1700000000}
	}`, string(data))

	// Connecting with no initial rooms still serializes an empty array,
	// never null.
	data, err = json.Marshal(NewConnected("abc-123", nil, 1700000000))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "Connected",
		"payload": {"connection_id": "abc-123", "rooms": [], "timestamp": 1700000000}
	}`, string(data))
}

func TestClientCommandRoundTrip(t *testing.T) {
	data, err := EncodeClientCommand(SubscribeCommand{Room: "swing-trading"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"Subscribe","data":{"room":"swing-trading"}}`, string(data))

	cmd, err := DecodeClientCommand(data)
	require.NoError(t, err)
	assert.Equal(t, SubscribeCommand{Room: "swing-trading"}, cmd)

	data, err = EncodeClientCommand(PingCommand{Timestamp: 1700000000})
	require.NoError(t, err)
	cmd, err = DecodeClientCommand(data)
	require.NoError(t, err)
	assert.Equal(t, PingCommand{Timestamp: 1700000000}, cmd)
}

func TestClientCommandUnknownActionRejected(t *testing.T) {
	_, err := DecodeClientCommand([]byte(`{"action":"Shout","data":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown client action")
}

func TestClientCommandMalformedJSON(t *testing.T) {
	_, err := DecodeClientCommand([]byte(`{"action":`))
	require.Error(t, err)
}
