package obquic

import (
	"net"

	"github.com/quic-go/quic-go"
)

// Conn is the subset of [*quic.Conn] methods used by the [Sender].
type Conn interface {
	SendDatagram([]byte) error

	RemoteAddr() net.Addr
}

var _ Conn = ConnAdapter{}

// ConnAdapter wraps a [*quic.Conn], implementing the [Conn] interface.
//
// Create an instance with [WrapConn].
type ConnAdapter struct {
	qc *quic.Conn
}

// WrapConn wraps the given connection,
// returning a value implementing [Conn].
//
// The connection must have been established with datagram support enabled
// (see [quic.Config.EnableDatagrams]) for sends to succeed.
func WrapConn(qc *quic.Conn) ConnAdapter {
	return ConnAdapter{qc: qc}
}

func (c ConnAdapter) SendDatagram(p []byte) error {
	return c.qc.SendDatagram(p)
}

func (c ConnAdapter) RemoteAddr() net.Addr { return c.qc.RemoteAddr() }
