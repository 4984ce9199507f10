// Package app owns room membership, host election, relay routing and
// broadcast fan-out. A room is the unit of mutual exclusion: every state
// change and every send it causes happens under that room's lock, so all
// members observe one per-room event order.
package app

// Conn is the send side of one client connection. TrySend must never
// block: implementations buffer and report failure instead, and a failed
// send is treated as the start of that connection's disconnect, not an
// error for anyone else.
type Conn interface {
	ID() string
	TrySend(v any) error
	Close()
}
