// Package realtime implements the room-scoped WebSocket broadcast fabric.
//
// The Registry maps room slugs to fan-out channels with per-room subscriber counts.
// A Session owns one read loop, one write loop (the only socket writer), a heartbeat
// timer, and one forwarder goroutine per subscribed room. Delivery is best-effort:
// slow subscribers skip messages instead of blocking publishers.
package realtime
