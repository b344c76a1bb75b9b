// Package server is the HTTP and WebSocket edge.
//
// It owns the Echo instance, the route table, the WebSocket upgrade path
// with its connection limits, the admin API guarded by JWT bearer auth,
// and the health and observability endpoints. Handlers translate between
// HTTP and the application service; they hold no business logic.
package server
