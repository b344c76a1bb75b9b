// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (alert.go, trade.go,
// tradeplan.go, video.go) with shared types and repository contracts.
// No implementation code, just contracts. Prevents circular imports by
// keeping interfaces on the consumer side.
package domain
