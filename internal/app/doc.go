// Package app provides the application service layer.
//
// Orchestrates use cases: alert publishing, trade lifecycle, trade plan and
// video management. Every mutation persists first and broadcasts second, so
// clients never see an event for state that was not stored. Sits between
// HTTP handlers and domain repositories. Depends on domain interfaces, not
// concrete implementations.
package app
