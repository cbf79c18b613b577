// Package obquictest contains test doubles for package obquic.
package obquictest

import (
	"net"
	"net/netip"
	"slices"

	"github.com/gordian-engine/outbound/obquic"
)

var _ obquic.Conn = (*DatagramRecorder)(nil)

// DatagramRecorder is an [obquic.Conn]
// that records every datagram passed to SendDatagram
// instead of putting it on the network.
//
// It is not safe for concurrent use,
// which matches how [obquic.Sender] calls it.
type DatagramRecorder struct {
	Remote net.Addr

	// Copies of successfully "sent" datagrams, in send order.
	Sent [][]byte

	// If set, Fail is consulted before recording each datagram.
	// A non-nil return value is returned from SendDatagram
	// and the datagram is not recorded.
	Fail func(d []byte) error
}

// NewDatagramRecorder returns a recorder whose remote address is remote,
// which must be a valid "host:port" UDP address.
func NewDatagramRecorder(remote string) *DatagramRecorder {
	return &DatagramRecorder{
		Remote: net.UDPAddrFromAddrPort(netip.MustParseAddrPort(remote)),
	}
}

func (r *DatagramRecorder) SendDatagram(d []byte) error {
	if r.Fail != nil {
		if err := r.Fail(d); err != nil {
			return err
		}
	}

	r.Sent = append(r.Sent, slices.Clone(d))
	return nil
}

func (r *DatagramRecorder) RemoteAddr() net.Addr {
	return r.Remote
}
