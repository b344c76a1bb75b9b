// Package redis provides the instrumented Redis client and the
// cross-instance broadcast bridge.
//
// The client carries a metrics hook and a circuit breaker hook on every
// command. The Bridge relays room events over Redis Pub/Sub so that a
// broadcast raised on one instance reaches subscribers connected to another.
package redis
