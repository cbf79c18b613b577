package obquic

import (
	"fmt"

	"github.com/gordian-engine/outbound"
)

// FlushError is returned from [*Sender.Flush]
// when one or more drained messages could not be sent.
//
// The failed messages have already been removed from the queue.
// The caller owns them and decides whether they are worth enqueueing again.
type FlushError struct {
	// Messages whose send failed, in their original order.
	Unsent []outbound.Message

	// The first send error encountered.
	Err error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("failed to send %d datagram(s): %v", len(e.Unsent), e.Err)
}

func (e *FlushError) Unwrap() error {
	return e.Err
}
