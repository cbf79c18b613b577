// Package outbound contains the staging buffer for messages
// that an application wants to send to remote peers.
//
// The [Queue] type holds pending messages in arrival order,
// alongside the link conditions (frame budget, latency, packet loss)
// most recently reported by the transport that consumes it.
// Application code calls [*Queue.Enqueue];
// the transport calls [*Queue.DrainMatching] once per transmission cycle
// to take ownership of the messages it is about to put on the wire.
//
// The queue performs no I/O of its own.
// See package [github.com/gordian-engine/outbound/obquic]
// for a transport that drains a Queue onto QUIC datagrams.
//
// A Queue is not safe for concurrent use.
// It is meant to have a single owner per connection or session;
// callers sharing one across goroutines must provide their own synchronization.
package outbound
