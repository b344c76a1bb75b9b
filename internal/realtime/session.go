package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/metrics"
)

const (
	// heartbeatInterval is how often an idle session is pinged at the
	// application level, independent of client activity.
	heartbeatInterval = 30 * time.Second

	// clientTimeout is how long a client may stay silent before it should be
	// considered dead.
	// TODO: enforce by closing connections whose last Pong is older than this.
	clientTimeout = 60 * time.Second

	// MaxMessageSize bounds a single inbound frame. Oversized frames are
	// rejected by the transport before they reach decoding.
	MaxMessageSize = 64 * 1024

	outboundQueueSize = 100
	writeDeadline     = 5 * time.Second
)

// Session orchestrates one accepted WebSocket connection: a read loop
// decoding client commands, a write loop that is the sole socket writer, a
// heartbeat timer, and one forwarder goroutine per subscribed room. All
// child goroutines hang off the Run context; whichever of the read or write
// loop finishes first triggers cancellation of the rest.
type Session struct {
	id       uuid.UUID
	conn     *websocket.Conn
	registry *Registry
	clock    clockwork.Clock

	out chan Message

	mu         sync.Mutex
	forwarders map[string]context.CancelFunc
	wg         sync.WaitGroup
}

// NewSession wraps an upgraded connection. The caller keeps ownership of the
// connection until Run returns.
func NewSession(registry *Registry, conn *websocket.Conn, clock clockwork.Clock) *Session {
	conn.SetReadLimit(MaxMessageSize)
	return &Session{
		id:         uuid.New(),
		conn:       conn,
		registry:   registry,
		clock:      clock,
		out:        make(chan Message, outboundQueueSize),
		forwarders: make(map[string]context.CancelFunc),
	}
}

// ID returns the generated connection ID.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Run drives the session until the client disconnects, the socket write
// path fails, or ctx is canceled. It blocks the calling handler goroutine,
// confirms the connection, subscribes the initial rooms, and then tears
// everything down in order on exit.
func (s *Session) Run(ctx context.Context, initialRooms []string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	metrics.WebSocketConnectionsTotal.Inc()
	metrics.WebSocketActiveConnections.Inc()
	defer metrics.WebSocketActiveConnections.Dec()

	slog.Info("WebSocket connection established",
		"connection_id", s.id.String(),
		"initial_rooms", initialRooms,
	)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		s.writeLoop()
	}()

	// Connected goes out first; Subscribed confirmations follow in queue
	// order because this goroutine is the only one enqueuing at this point.
	s.enqueue(ctx, NewConnected(s.id.String(), initialRooms, s.clock.Now().Unix()))
	for _, slug := range initialRooms {
		s.subscribe(ctx, slug)
	}

	s.wg.Add(1)
	go s.heartbeatLoop(ctx)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		s.readLoop(ctx)
	}()

	// First loop to finish wins and triggers coordinated teardown.
	select {
	case <-writeDone:
	case <-readDone:
	case <-ctx.Done():
	}

	cancel()
	_ = s.conn.Close()
	<-readDone

	s.mu.Lock()
	for slug, stop := range s.forwarders {
		stop()
		delete(s.forwarders, slug)
	}
	s.mu.Unlock()

	// Heartbeat and forwarders unblock via ctx; only then is the queue safe
	// to close for the writer to drain out.
	s.wg.Wait()
	close(s.out)
	<-writeDone

	slog.Info("WebSocket connection closed", "connection_id", s.id.String())
}

// enqueue places a message on the outbound queue, suspending while the queue
// is full. It gives up when the session is shutting down.
func (s *Session) enqueue(ctx context.Context, msg Message) {
	select {
	case s.out <- msg:
	case <-ctx.Done():
	}
}

// subscribe adds the room to the subscription set and spawns its forwarder.
// Subscribing to an already-tracked room is a no-op, so double subscribes
// never double delivery.
func (s *Session) subscribe(ctx context.Context, slug string) {
	if slug == "" {
		return
	}

	s.mu.Lock()
	if _, tracked := s.forwarders[slug]; tracked {
		s.mu.Unlock()
		return
	}
	rcv := s.registry.Subscribe(slug)
	fwdCtx, stop := context.WithCancel(ctx)
	s.forwarders[slug] = stop
	s.mu.Unlock()

	s.wg.Add(1)
	go s.forward(fwdCtx, slug, rcv)

	s.enqueue(ctx, NewSubscribed(slug))
}

// unsubscribe cancels the room's forwarder and confirms. Untracked rooms are
// ignored.
func (s *Session) unsubscribe(ctx context.Context, slug string) {
	s.mu.Lock()
	stop, tracked := s.forwarders[slug]
	if tracked {
		delete(s.forwarders, slug)
	}
	s.mu.Unlock()

	if !tracked {
		return
	}

	stop()
	s.enqueue(ctx, NewUnsubscribed(slug))
}

// forward relays one room's events into the session's outbound queue until
// its context is canceled. The registry detach happens here, exactly once
// per subscription.
func (s *Session) forward(ctx context.Context, slug string, rcv *Receiver) {
	defer s.wg.Done()
	defer s.registry.Unsubscribe(slug, rcv)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-rcv.C:
			if !ok {
				return
			}
			s.enqueue(ctx, msg)
		}
	}
}

// readLoop decodes client commands off the socket. Frames that fail to parse
// are dropped without closing the connection; only socket-level errors or a
// client close end the loop.
func (s *Session) readLoop(ctx context.Context) {
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("WebSocket read error", "connection_id", s.id.String(), "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		cmd, err := DecodeClientCommand(data)
		if err != nil {
			metrics.WebSocketMalformedFramesTotal.Inc()
			slog.Debug("Dropping malformed client frame", "connection_id", s.id.String(), "error", err)
			continue
		}

		switch c := cmd.(type) {
		case SubscribeCommand:
			s.subscribe(ctx, c.Room)
		case UnsubscribeCommand:
			s.unsubscribe(ctx, c.Room)
		case PingCommand:
			slog.Debug("Received ping", "connection_id", s.id.String(), "timestamp", c.Timestamp)
			s.enqueue(ctx, NewHeartbeat(s.clock.Now().Unix()))
		case PongCommand:
			slog.Debug("Received pong", "connection_id", s.id.String())
		}
	}
}

// writeLoop serializes the outbound queue onto the socket. It is the only
// goroutine allowed to write, which keeps frames from interleaving. A write
// failure is fatal for the session.
func (s *Session) writeLoop() {
	for msg := range s.out {
		data, err := json.Marshal(msg)
		if err != nil {
			slog.Error("Failed to marshal outbound message", "connection_id", s.id.String(), "type", string(msg.Type), "error", err)
			continue
		}

		start := s.clock.Now()
		_ = s.conn.SetWriteDeadline(s.clock.Now().Add(writeDeadline))
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
		metrics.WebSocketMessageSendDuration.Observe(s.clock.Since(start).Seconds())
	}
}

// heartbeatLoop enqueues a Heartbeat on a fixed cadence regardless of
// subscriptions or client activity.
func (s *Session) heartbeatLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.enqueue(ctx, NewHeartbeat(s.clock.Now().Unix()))
		}
	}
}

// Rooms returns the session's current subscription set. Primarily for
// observability and tests.
func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := make([]string, 0, len(s.forwarders))
	for slug := range s.forwarders {
		rooms = append(rooms, slug)
	}
	return rooms
}
