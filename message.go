package outbound

import (
	"log/slog"
	"net/netip"
)

// Message is an addressed payload waiting to be sent.
//
// Messages are created through [*Queue.Enqueue],
// which copies the payload,
// and handed back to the caller by [*Queue.DrainMatching].
type Message struct {
	Destination netip.AddrPort

	// Opaque payload bytes.
	// The encoding is decided by whoever constructed the message.
	Payload []byte
}

// LogValue implements [slog.LogValuer].
// The payload is summarized by its length.
func (m Message) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dst", m.Destination.String()),
		slog.Int("payload_len", len(m.Payload)),
	)
}
