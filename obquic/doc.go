// Package obquic is a transport for an [outbound.Queue]
// that sends queued payloads as QUIC datagrams.
//
// It is one possible implementation of the transport side of the queue contract:
// the owner of the queue calls [*Sender.Flush] once per transmission cycle,
// and reports what it measured about the link through [Measurement.Apply].
//
// Datagrams are unreliable.
// The Sender sends each drained message exactly once
// and reports, but never retries, the ones that failed.
package obquic
