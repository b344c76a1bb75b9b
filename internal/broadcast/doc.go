// Package broadcast is the typed publishing surface for domain events.
//
// Domain code calls one narrow method per event kind; the Broadcaster
// derives the target room from the payload's room slug and hands the tagged
// message to the registry, plus the cross-instance bridge when configured.
// Callers never touch sessions or registry internals.
package broadcast
