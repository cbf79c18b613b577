package obquic

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/outbound"
	"github.com/quic-go/quic-go"
)

// Sender drains messages addressed to one QUIC peer from a queue
// and sends each payload as a single datagram.
//
// A Sender holds no queue state of its own.
// It is used by whoever owns the queue, on that owner's goroutine.
type Sender struct {
	log *slog.Logger

	conn Conn

	// Unmapped address of the peer,
	// compared against each queued message's destination.
	remote netip.AddrPort

	ignoreFrameBudget bool
}

// SenderConfig is the configuration passed to [NewSender].
type SenderConfig struct {
	// The connection to send datagrams on.
	Conn Conn

	// By default, each flush only drains as many payload bytes
	// as the queue's current frame budget allows,
	// so nothing is sent until the frame budget has been set above zero.
	// Setting IgnoreFrameBudget drains every message for the peer on each flush.
	IgnoreFrameBudget bool
}

// NewSender returns a Sender for cfg.Conn.
// It returns an error if the connection's remote address
// cannot be expressed as an IP address and port.
func NewSender(log *slog.Logger, cfg SenderConfig) (*Sender, error) {
	if cfg.Conn == nil {
		return nil, errors.New("obquic: SenderConfig.Conn must not be nil")
	}

	remote, err := addrPort(cfg.Conn.RemoteAddr())
	if err != nil {
		return nil, fmt.Errorf("obquic: unusable remote address: %w", err)
	}

	return &Sender{
		log: log.With("remote", remote),

		conn: cfg.Conn,

		remote: remote,

		ignoreFrameBudget: cfg.IgnoreFrameBudget,
	}, nil
}

// Remote returns the peer address that s matches messages against.
func (s *Sender) Remote() netip.AddrPort {
	return s.remote
}

// Flush drains the messages in q addressed to the sender's peer
// and sends each of them once, in queue order.
// Messages for other destinations are left in q.
//
// Unless the sender was configured to ignore it,
// the queue's frame budget caps the total payload bytes drained;
// messages that do not fit stay queued for a later flush.
//
// Flush returns the number of datagrams sent.
// A failed send does not stop the remaining sends in the batch;
// if any failed, the returned error is a [*FlushError].
func (s *Sender) Flush(q *outbound.Queue) (int, error) {
	if !q.HasPending() {
		return 0, nil
	}

	match := outbound.ToDestination(s.remote)
	if !s.ignoreFrameBudget {
		match = outbound.All(match, outbound.WithinBudget(int(q.FrameBudgetBytes())))
	}

	batch := q.DrainMatching(match)
	if len(batch) == 0 {
		return 0, nil
	}

	var failed *bitset.BitSet
	var firstErr error
	for i, m := range batch {
		err := s.conn.SendDatagram(m.Payload)
		if err == nil {
			continue
		}

		if failed == nil {
			failed = bitset.New(uint(len(batch)))
			firstErr = err
		}
		failed.Set(uint(i))

		var tooLarge *quic.DatagramTooLargeError
		if errors.As(err, &tooLarge) {
			s.log.Warn(
				"Message payload exceeds peer's maximum datagram size",
				"msg", m,
				"max_size", tooLarge.MaxDatagramPayloadSize,
			)
			continue
		}

		s.log.Debug("Failed to send datagram", "msg", m, "err", err)
	}

	if failed == nil {
		s.log.Debug("Flushed datagrams", "n", len(batch), "q", q)
		return len(batch), nil
	}

	nFailed := int(failed.Count())
	unsent := make([]outbound.Message, 0, nFailed)
	for u, ok := failed.NextSet(0); ok; u, ok = failed.NextSet(u + 1) {
		unsent = append(unsent, batch[u])
	}

	sent := len(batch) - nFailed
	s.log.Info(
		"Some datagrams failed to send",
		"sent", sent,
		"failed", nFailed,
		"first_err", firstErr,
	)

	return sent, &FlushError{
		Unsent: unsent,
		Err:    firstErr,
	}
}

// addrPort converts a to an unmapped [netip.AddrPort].
func addrPort(a net.Addr) (netip.AddrPort, error) {
	if a == nil {
		return netip.AddrPort{}, errors.New("nil address")
	}

	var ap netip.AddrPort
	if ua, ok := a.(*net.UDPAddr); ok {
		ap = ua.AddrPort()
	} else {
		var err error
		ap, err = netip.ParseAddrPort(a.String())
		if err != nil {
			return netip.AddrPort{}, err
		}
	}

	if !ap.IsValid() {
		return netip.AddrPort{}, fmt.Errorf("invalid address %q", a.String())
	}

	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), nil
}
