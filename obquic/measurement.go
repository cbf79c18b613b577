package obquic

import (
	"time"

	"github.com/gordian-engine/outbound"
)

// Measurement is what a transport observed about its link
// over the most recent measurement cycle.
type Measurement struct {
	RTT time.Duration

	PacketLoss float32

	FrameBudgetBytes int32
}

// Apply reports m to q through the queue's link-condition setters.
// Values are passed through unchanged.
func (m Measurement) Apply(q *outbound.Queue) {
	q.SetFrameBudgetBytes(m.FrameBudgetBytes)
	q.SetLatencyNanos(m.RTT.Nanoseconds())
	q.SetPacketLoss(m.PacketLoss)
}
