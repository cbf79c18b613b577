package outbound

import (
	"log/slog"
	"time"
)

// LinkConditions is a snapshot of the link-condition fields of a [Queue].
//
// The values are whatever the transport last reported.
// None of them are validated or clamped;
// in particular PacketLoss is conventionally in [0.0, 1.0]
// but is stored exactly as given.
type LinkConditions struct {
	// Bytes of payload the transport advises can be reliably sent
	// in the current transmission window.
	// Advisory only; the queue never enforces it.
	FrameBudgetBytes int32

	// Estimated round-trip latency.
	LatencyNanos int64

	// Estimated fraction of packets lost.
	PacketLoss float32
}

// Latency returns c.LatencyNanos as a [time.Duration].
func (c LinkConditions) Latency() time.Duration {
	return time.Duration(c.LatencyNanos)
}

// LogValue implements [slog.LogValuer].
func (c LinkConditions) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame_budget_bytes", int(c.FrameBudgetBytes)),
		slog.Duration("latency", c.Latency()),
		slog.Float64("packet_loss", float64(c.PacketLoss)),
	)
}
