package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType discriminates the server-to-client message union. The values
// match the wire protocol consumed by the frontend, so they stay PascalCase.
type MessageType string

const (
	TypeAlertCreated     MessageType = "AlertCreated"
	TypeAlertUpdated     MessageType = "AlertUpdated"
	TypeAlertDeleted     MessageType = "AlertDeleted"
	TypeTradeCreated     MessageType = "TradeCreated"
	TypeTradeClosed      MessageType = "TradeClosed"
	TypeTradeUpdated     MessageType = "TradeUpdated"
	TypeTradeInvalidated MessageType = "TradeInvalidated"
	TypeStatsUpdated     MessageType = "StatsUpdated"
	TypeTradePlanCreated MessageType = "TradePlanCreated"
	TypeTradePlanUpdated MessageType = "TradePlanUpdated"
	TypeTradePlanDeleted MessageType = "TradePlanDeleted"
	TypeVideoPublished   MessageType = "VideoPublished"
	TypeHeartbeat        MessageType = "Heartbeat"
	TypeConnected        MessageType = "Connected"
	TypeError            MessageType = "Error"
	TypeSubscribed       MessageType = "Subscribed"
	TypeUnsubscribed     MessageType = "Unsubscribed"
)

// AlertPayload is the alert entity as delivered to clients.
type AlertPayload struct {
	ID          int64     `json:"id"`
	RoomSlug    string    `json:"room_slug"`
	AlertType   string    `json:"alert_type"`
	Ticker      string    `json:"ticker"`
	Title       *string   `json:"title"`
	Message     string    `json:"message"`
	Notes       *string   `json:"notes"`
	TosString   *string   `json:"tos_string"`
	IsNew       bool      `json:"is_new"`
	IsPinned    bool      `json:"is_pinned"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TradePayload is the trade entity as delivered to clients.
type TradePayload struct {
	ID                 int64    `json:"id"`
	RoomSlug           string   `json:"room_slug"`
	Ticker             string   `json:"ticker"`
	Direction          string   `json:"direction"`
	Status             string   `json:"status"`
	EntryPrice         float64  `json:"entry_price"`
	ExitPrice          *float64 `json:"exit_price"`
	PnlPercent         *float64 `json:"pnl_percent"`
	Result             *string  `json:"result"`
	InvalidationReason *string  `json:"invalidation_reason"`
	WasUpdated         *bool    `json:"was_updated"`
	EntryDate          string   `json:"entry_date"`
	ExitDate           *string  `json:"exit_date"`
}

// StatsPayload carries recalculated room performance metrics.
type StatsPayload struct {
	RoomSlug       string   `json:"room_slug"`
	WinRate        *float64 `json:"win_rate"`
	WeeklyProfit   *string  `json:"weekly_profit"`
	ActiveTrades   *int32   `json:"active_trades"`
	ClosedThisWeek *int32   `json:"closed_this_week"`
	TotalTrades    *int32   `json:"total_trades"`
	CurrentStreak  *int32   `json:"current_streak"`
}

// TradePlanPayload is a trade-plan entry as delivered to clients.
type TradePlanPayload struct {
	ID            int64   `json:"id"`
	RoomSlug      string  `json:"room_slug"`
	Ticker        string  `json:"ticker"`
	Bias          string  `json:"bias"`
	Entry         *string `json:"entry"`
	Target1       *string `json:"target1"`
	Target2       *string `json:"target2"`
	Target3       *string `json:"target3"`
	Runner        *string `json:"runner"`
	Stop          *string `json:"stop"`
	OptionsStrike *string `json:"options_strike"`
	OptionsExp    *string `json:"options_exp"`
	Notes         *string `json:"notes"`
}

// VideoPayload is a published weekly video as delivered to clients.
type VideoPayload struct {
	ID           int64     `json:"id"`
	RoomSlug     string    `json:"room_slug"`
	WeekTitle    string    `json:"week_title"`
	VideoTitle   string    `json:"video_title"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	Duration     *string   `json:"duration"`
	PublishedAt  time.Time `json:"published_at"`
}

// Payload wrappers. The wire format nests each entity under its own key,
// e.g. {"type":"AlertCreated","payload":{"alert":{...}}}.

type AlertEvent struct {
	Alert AlertPayload `json:"alert"`
}

type AlertDeletedEvent struct {
	AlertID int64 `json:"alert_id"`
}

type TradeEvent struct {
	Trade TradePayload `json:"trade"`
}

type StatsEvent struct {
	Stats StatsPayload `json:"stats"`
}

type TradePlanEvent struct {
	Entry TradePlanPayload `json:"entry"`
}

type TradePlanDeletedEvent struct {
	EntryID int64 `json:"entry_id"`
}

type VideoEvent struct {
	Video VideoPayload `json:"video"`
}

type HeartbeatEvent struct {
	Timestamp int64 `json:"timestamp"`
}

type ConnectedEvent struct {
	ConnectionID string   `json:"connection_id"`
	Rooms        []string `json:"rooms"`
	Timestamp    int64    `json:"timestamp"`
}

type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubscribedEvent struct {
	Room string `json:"room"`
}

type UnsubscribedEvent struct {
	Room string `json:"room"`
}

// Message is one server-to-client event. The variant set is closed: decoding
// rejects unknown discriminants, and constructors below are the only way
// domain code builds instances.
type Message struct {
	Type    MessageType
	Payload any
}

type messageEnvelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the message as {"type": ..., "payload": {...}}.
func (m Message) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", m.Type, err)
	}
	return json.Marshal(messageEnvelope{Type: m.Type, Payload: payload})
}

// UnmarshalJSON decodes a tagged message, selecting the payload type from the
// discriminant. Unknown discriminants are an error.
func (m *Message) UnmarshalJSON(data []byte) error {
	var env messageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	var payload any
	switch env.Type {
	case TypeAlertCreated, TypeAlertUpdated:
		payload = &AlertEvent{}
	case TypeAlertDeleted:
		payload = &AlertDeletedEvent{}
	case TypeTradeCreated, TypeTradeClosed, TypeTradeUpdated, TypeTradeInvalidated:
		payload = &TradeEvent{}
	case TypeStatsUpdated:
		payload = &StatsEvent{}
	case TypeTradePlanCreated, TypeTradePlanUpdated:
		payload = &TradePlanEvent{}
	case TypeTradePlanDeleted:
		payload = &TradePlanDeletedEvent{}
	case TypeVideoPublished:
		payload = &VideoEvent{}
	case TypeHeartbeat:
		payload = &HeartbeatEvent{}
	case TypeConnected:
		payload = &ConnectedEvent{}
	case TypeError:
		payload = &ErrorEvent{}
	case TypeSubscribed:
		payload = &SubscribedEvent{}
	case TypeUnsubscribed:
		payload = &UnsubscribedEvent{}
	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}

	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}

	m.Type = env.Type
	m.Payload = payload
	return nil
}

// --- Constructors ---

func NewAlertCreated(alert AlertPayload) Message {
	return Message{Type: TypeAlertCreated, Payload: &AlertEvent{Alert: alert}}
}

func NewAlertUpdated(alert AlertPayload) Message {
	return Message{Type: TypeAlertUpdated, Payload: &AlertEvent{Alert: alert}}
}

func NewAlertDeleted(alertID int64) Message {
	return Message{Type: TypeAlertDeleted, Payload: &AlertDeletedEvent{AlertID: alertID}}
}

func NewTradeCreated(trade TradePayload) Message {
	return Message{Type: TypeTradeCreated, Payload: &TradeEvent{Trade: trade}}
}

func NewTradeClosed(trade TradePayload) Message {
	return Message{Type: TypeTradeClosed, Payload: &TradeEvent{Trade: trade}}
}

func NewTradeUpdated(trade TradePayload) Message {
	return Message{Type: TypeTradeUpdated, Payload: &TradeEvent{Trade: trade}}
}

func NewTradeInvalidated(trade TradePayload) Message {
	return Message{Type: TypeTradeInvalidated, Payload: &TradeEvent{Trade: trade}}
}

func NewStatsUpdated(stats StatsPayload) Message {
	return Message{Type: TypeStatsUpdated, Payload: &StatsEvent{Stats: stats}}
}

func NewTradePlanCreated(entry TradePlanPayload) Message {
	return Message{Type: TypeTradePlanCreated, Payload: &TradePlanEvent{Entry: entry}}
}

func NewTradePlanUpdated(entry TradePlanPayload) Message {
	return Message{Type: TypeTradePlanUpdated, Payload: &TradePlanEvent{Entry: entry}}
}

func NewTradePlanDeleted(entryID int64) Message {
	return Message{Type: TypeTradePlanDeleted, Payload: &TradePlanDeletedEvent{EntryID: entryID}}
}

func NewVideoPublished(video VideoPayload) Message {
	return Message{Type: TypeVideoPublished, Payload: &VideoEvent{Video: video}}
}

func NewHeartbeat(timestamp int64) Message {
	return Message{Type: TypeHeartbeat, Payload: &HeartbeatEvent{Timestamp: timestamp}}
}

func NewConnected(connectionID string, rooms []string, timestamp int64) Message {
	// Clients expect "rooms" to always be an array, even with no initial
	// subscriptions.
	if rooms == nil {
		rooms = []string{}
	}
	return Message{Type: TypeConnected, Payload: &ConnectedEvent{ConnectionID: connectionID, Rooms: rooms, Timestamp: timestamp}}
}

func NewError(code, message string) Message {
	return Message{Type: TypeError, Payload: &ErrorEvent{Code: code, Message: message}}
}

func NewSubscribed(room string) Message {
	return Message{Type: TypeSubscribed, Payload: &SubscribedEvent{Room: room}}
}

func NewUnsubscribed(room string) Message {
	return Message{Type: TypeUnsubscribed, Payload: &UnsubscribedEvent{Room: room}}
}
