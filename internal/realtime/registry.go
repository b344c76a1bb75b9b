package realtime

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/metrics"
)

// roomBufferSize bounds how far a subscriber may fall behind before it
// starts skipping messages.
const roomBufferSize = 1000

// Receiver is one subscriber's read handle on a room. Messages arrive on C
// until Unsubscribe closes it. A receiver that stops draining C loses
// messages once the buffer fills; it is never blocked on and never blocks
// the publisher.
type Receiver struct {
	C chan Message

	room string
}

// room is the fan-out state for one slug. Entries are created on first
// subscribe and kept for the process lifetime, even after the last
// subscriber leaves.
type room struct {
	mu   sync.Mutex
	subs map[*Receiver]struct{}
}

// RoomCount is one row of the observability snapshot.
type RoomCount struct {
	Room        string `json:"room"`
	Connections int    `json:"connections"`
}

// Registry is the process-wide table of rooms. One instance is created at
// startup and shared by every session and by the broadcast facade.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	counts map[string]int
	buffer int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return newRegistry(roomBufferSize)
}

func newRegistry(buffer int) *Registry {
	return &Registry{
		rooms:  make(map[string]*room),
		counts: make(map[string]int),
		buffer: buffer,
	}
}

// Subscribe registers a new receiver on the room, creating the room entry if
// it does not exist yet. It always succeeds. The write lock covers the
// entry-or-insert step so two concurrent first subscribers cannot race into
// two separate rooms.
func (reg *Registry) Subscribe(roomSlug string) *Receiver {
	reg.mu.Lock()
	r, ok := reg.rooms[roomSlug]
	if !ok {
		r = &room{subs: make(map[*Receiver]struct{})}
		reg.rooms[roomSlug] = r
	}
	reg.counts[roomSlug]++
	count := reg.counts[roomSlug]
	reg.mu.Unlock()

	rcv := &Receiver{C: make(chan Message, reg.buffer), room: roomSlug}
	r.mu.Lock()
	r.subs[rcv] = struct{}{}
	r.mu.Unlock()

	metrics.RoomSubscribers.WithLabelValues(roomSlug).Set(float64(count))
	slog.Info("Client subscribed to room", "room", roomSlug, "connections", count)
	return rcv
}

// Unsubscribe detaches the receiver and decrements the room's subscriber
// count, flooring at zero. The count entry is dropped at zero; the room's
// fan-out entry is retained for future resubscriptions.
func (reg *Registry) Unsubscribe(roomSlug string, rcv *Receiver) {
	reg.mu.Lock()
	r, ok := reg.rooms[roomSlug]
	count := reg.counts[roomSlug]
	if count > 0 {
		count--
		if count == 0 {
			delete(reg.counts, roomSlug)
		} else {
			reg.counts[roomSlug] = count
		}
	}
	reg.mu.Unlock()

	if !ok || rcv == nil {
		return
	}

	r.mu.Lock()
	if _, attached := r.subs[rcv]; attached {
		delete(r.subs, rcv)
		close(rcv.C)
	}
	r.mu.Unlock()

	if count == 0 {
		metrics.RoomSubscribers.DeleteLabelValues(roomSlug)
	} else {
		metrics.RoomSubscribers.WithLabelValues(roomSlug).Set(float64(count))
	}
	slog.Info("Client unsubscribed from room", "room", roomSlug, "connections", count)
}

// Broadcast fans the message out to every live subscriber of the room.
// Unknown rooms and rooms without subscribers are a silent no-op: events are
// never queued for absent listeners. A subscriber whose buffer is full skips
// the message rather than delaying anyone else.
func (reg *Registry) Broadcast(roomSlug string, msg Message) {
	reg.mu.RLock()
	r, ok := reg.rooms[roomSlug]
	reg.mu.RUnlock()

	if !ok {
		metrics.BroadcastNoSubscribersTotal.Inc()
		return
	}

	r.mu.Lock()
	if len(r.subs) == 0 {
		r.mu.Unlock()
		metrics.BroadcastNoSubscribersTotal.Inc()
		return
	}

	receivers := len(r.subs)
	dropped := 0
	for rcv := range r.subs {
		select {
		case rcv.C <- msg:
		default:
			dropped++
		}
	}
	r.mu.Unlock()

	metrics.BroadcastMessagesTotal.WithLabelValues(string(msg.Type)).Inc()
	if dropped > 0 {
		metrics.BroadcastDroppedTotal.Add(float64(dropped))
		slog.Warn("Lagging subscribers skipped a message",
			"room", roomSlug,
			"type", string(msg.Type),
			"dropped", dropped,
		)
	}
	slog.Debug("Broadcast message to room", "room", roomSlug, "receivers", receivers)
}

// TotalConnections returns the number of live subscriptions across all rooms.
func (reg *Registry) TotalConnections() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	total := 0
	for _, c := range reg.counts {
		total += c
	}
	return total
}

// ActiveRooms returns a snapshot of rooms with at least one subscriber,
// sorted by slug for stable output.
func (reg *Registry) ActiveRooms() []RoomCount {
	reg.mu.RLock()
	rooms := make([]RoomCount, 0, len(reg.counts))
	for slug, c := range reg.counts {
		rooms = append(rooms, RoomCount{Room: slug, Connections: c})
	}
	reg.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Room < rooms[j].Room })
	return rooms
}
