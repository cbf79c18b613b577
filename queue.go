package outbound

import (
	"iter"
	"log/slog"
	"net/netip"
	"slices"
	"time"

	"github.com/bits-and-blooms/bitset"
)

// Queue is an ordered collection of messages awaiting transmission,
// plus the link conditions last reported by the transport.
//
// The zero value is an empty queue with zeroed link conditions,
// ready to use.
type Queue struct {
	// Arrival order; drains compact this slice in place.
	pending []Message

	frameBudgetBytes int32
	latencyNanos     int64
	packetLoss       float32
}

// NewQueue returns an empty queue with zeroed link conditions.
func NewQueue() *Queue {
	return new(Queue)
}

// Enqueue appends a message for dst to the tail of the queue.
//
// The payload is copied, so the caller may reuse it after Enqueue returns.
// Neither dst nor payload is validated here;
// that is the responsibility of whoever constructed the message.
func (q *Queue) Enqueue(dst netip.AddrPort, payload []byte) {
	q.pending = append(q.pending, Message{
		Destination: dst,
		Payload:     slices.Clone(payload),
	})
}

// HasPending reports whether any messages are queued.
func (q *Queue) HasPending() bool {
	return len(q.pending) > 0
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	return len(q.pending)
}

// PendingBytes returns the sum of the payload lengths of all queued messages.
func (q *Queue) PendingBytes() int {
	n := 0
	for _, m := range q.pending {
		n += len(m.Payload)
	}
	return n
}

// Pending returns an iterator over the queued messages in arrival order,
// without removing them.
//
// Each yielded message is a copy with its own payload,
// so nothing done with the yielded values can change the queue.
// The queue must not be modified while iterating.
func (q *Queue) Pending() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for _, m := range q.pending {
			m.Payload = slices.Clone(m.Payload)
			if !yield(m) {
				return
			}
		}
	}
}

// DrainMatching removes every queued message for which match returns true,
// and returns the removed messages in their original relative order.
//
// Messages that do not match stay queued, also in their original order.
// match is called exactly once per queued message, front to back,
// with a pointer into the queue;
// changes it makes to an unmatched message are kept.
//
// The returned slice is owned by the caller.
// It is empty (possibly nil) when nothing matched.
func (q *Queue) DrainMatching(match func(*Message) bool) []Message {
	var drained []Message

	// Stable compaction: kept always trails the read position,
	// so every write lands on a slot that has already been visited.
	kept := q.pending[:0]
	for i := range q.pending {
		m := &q.pending[i]
		if match(m) {
			drained = append(drained, *m)
			continue
		}
		kept = append(kept, *m)
	}

	// Drop references from the tail so drained payloads can be collected.
	clear(q.pending[len(kept):])
	q.pending = kept

	return drained
}

// MatchMask reports which queued messages match would select,
// without removing anything.
// Bit i of the result is set iff match returned true
// for the message at position i in arrival order.
//
// match receives a pointer to a copy of each message,
// so reassigning its fields does not change the queue.
// The payload bytes are shared and must not be written.
func (q *Queue) MatchMask(match func(*Message) bool) *bitset.BitSet {
	bs := bitset.New(uint(len(q.pending)))
	for i, m := range q.pending {
		if match(&m) {
			bs.Set(uint(i))
		}
	}
	return bs
}

// FrameBudgetBytes returns the estimated number of payload bytes
// that can be reliably sent in the current transmission window.
func (q *Queue) FrameBudgetBytes() int32 {
	return q.frameBudgetBytes
}

// SetFrameBudgetBytes sets the frame budget.
// This is meant to be called by the transport.
func (q *Queue) SetFrameBudgetBytes(budget int32) {
	q.frameBudgetBytes = budget
}

// LatencyNanos returns the estimated round-trip latency in nanoseconds.
func (q *Queue) LatencyNanos() int64 {
	return q.latencyNanos
}

// LatencyMicros returns the estimated round-trip latency in microseconds,
// truncated toward zero.
func (q *Queue) LatencyMicros() int64 {
	return q.latencyNanos / 1_000
}

// LatencyMillis returns the estimated round-trip latency in milliseconds,
// truncated toward zero.
func (q *Queue) LatencyMillis() int64 {
	return q.latencyNanos / 1_000_000
}

// Latency returns the estimated round-trip latency as a [time.Duration].
func (q *Queue) Latency() time.Duration {
	return time.Duration(q.latencyNanos)
}

// SetLatencyNanos sets the latency estimate.
// This is meant to be called by the transport.
func (q *Queue) SetLatencyNanos(latency int64) {
	q.latencyNanos = latency
}

// PacketLoss returns the estimated fraction of packets lost.
func (q *Queue) PacketLoss() float32 {
	return q.packetLoss
}

// SetPacketLoss sets the packet loss estimate.
// The value is stored as given, without clamping.
// This is meant to be called by the transport.
func (q *Queue) SetPacketLoss(loss float32) {
	q.packetLoss = loss
}

// LinkConditions returns a snapshot of all three link-condition fields.
func (q *Queue) LinkConditions() LinkConditions {
	return LinkConditions{
		FrameBudgetBytes: q.frameBudgetBytes,
		LatencyNanos:     q.latencyNanos,
		PacketLoss:       q.packetLoss,
	}
}

// SetLinkConditions replaces all three link-condition fields at once.
func (q *Queue) SetLinkConditions(c LinkConditions) {
	q.frameBudgetBytes = c.FrameBudgetBytes
	q.latencyNanos = c.LatencyNanos
	q.packetLoss = c.PacketLoss
}

// LogValue implements [slog.LogValuer],
// summarizing the queue for diagnostics.
func (q *Queue) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("pending", len(q.pending)),
		slog.Int("pending_bytes", q.PendingBytes()),
		slog.Any("link", q.LinkConditions()),
	)
}
