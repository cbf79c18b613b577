package obquic_test

import (
	"errors"
	"net"
	"net/netip"
	"slices"
	"testing"
	"time"

	"github.com/gordian-engine/outbound"
	"github.com/gordian-engine/outbound/internal/obtest"
	"github.com/gordian-engine/outbound/obquic"
	"github.com/gordian-engine/outbound/obquic/obquictest"
	"github.com/quic-go/quic-go"
	"github.com/stretchr/testify/require"
)

func TestNewSender_invalidConfig(t *testing.T) {
	t.Parallel()

	log := obtest.NewLogger(t)

	_, err := obquic.NewSender(log, obquic.SenderConfig{})
	require.Error(t, err)

	_, err = obquic.NewSender(log, obquic.SenderConfig{
		Conn: &obquictest.DatagramRecorder{},
	})
	require.Error(t, err)

	_, err = obquic.NewSender(log, obquic.SenderConfig{
		Conn: &obquictest.DatagramRecorder{
			Remote: &net.UnixAddr{Name: "/tmp/obquic.sock", Net: "unixgram"},
		},
	})
	require.Error(t, err)
}

func TestNewSender_unmapsRemote(t *testing.T) {
	t.Parallel()

	rec := &obquictest.DatagramRecorder{
		// net.ParseIP returns the 16-byte form of IPv4 addresses.
		Remote: &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 3000},
	}
	s, err := obquic.NewSender(obtest.NewLogger(t), obquic.SenderConfig{Conn: rec})
	require.NoError(t, err)

	require.Equal(t, netip.MustParseAddrPort("127.0.0.1:3000"), s.Remote())

	q := outbound.NewQueue()
	q.SetFrameBudgetBytes(100)
	q.Enqueue(obtest.AddrPort(t, "127.0.0.1:3000"), []byte("hi"))

	n, err := s.Flush(q)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, [][]byte{[]byte("hi")}, rec.Sent)
}

func TestSender_Flush_emptyQueue(t *testing.T) {
	t.Parallel()

	rec := obquictest.NewDatagramRecorder("127.0.0.1:3000")
	s, err := obquic.NewSender(obtest.NewLogger(t), obquic.SenderConfig{Conn: rec})
	require.NoError(t, err)

	n, err := s.Flush(outbound.NewQueue())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, rec.Sent)
}

func TestSender_Flush_zeroBudgetSendsNothing(t *testing.T) {
	t.Parallel()

	rec := obquictest.NewDatagramRecorder("127.0.0.1:3000")
	s, err := obquic.NewSender(obtest.NewLogger(t), obquic.SenderConfig{Conn: rec})
	require.NoError(t, err)

	q := outbound.NewQueue()
	q.Enqueue(s.Remote(), []byte("a"))

	n, err := s.Flush(q)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, rec.Sent)
	require.Equal(t, 1, q.Len())
}

func TestSender_Flush_respectsDestinationAndBudget(t *testing.T) {
	t.Parallel()

	rec := obquictest.NewDatagramRecorder("127.0.0.1:3000")
	s, err := obquic.NewSender(obtest.NewLogger(t), obquic.SenderConfig{Conn: rec})
	require.NoError(t, err)

	peer := s.Remote()
	other := obtest.AddrPort(t, "127.0.0.1:4000")

	q := outbound.NewQueue()
	q.Enqueue(peer, []byte("aaaa"))
	q.Enqueue(other, []byte("zzzz"))
	q.Enqueue(peer, []byte("bbbbbbbb"))
	q.Enqueue(peer, []byte("cc"))
	q.Enqueue(other, []byte("y"))

	q.SetFrameBudgetBytes(7)

	n, err := s.Flush(q)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, [][]byte{[]byte("aaaa"), []byte("cc")}, rec.Sent)

	// The oversized message for the peer and
	// everything for other destinations stay queued, in order.
	var left []string
	for m := range q.Pending() {
		left = append(left, string(m.Payload))
	}
	require.Equal(t, []string{"zzzz", "bbbbbbbb", "y"}, left)

	// A larger budget on the next cycle lets the remaining message through.
	q.SetFrameBudgetBytes(1200)
	n, err = s.Flush(q)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []byte("bbbbbbbb"), rec.Sent[2])
	require.Equal(t, 2, q.Len())
}

func TestSender_Flush_ignoreFrameBudget(t *testing.T) {
	t.Parallel()

	rec := obquictest.NewDatagramRecorder("[2001:db8::5]:443")
	s, err := obquic.NewSender(obtest.NewLogger(t), obquic.SenderConfig{
		Conn:              rec,
		IgnoreFrameBudget: true,
	})
	require.NoError(t, err)

	data := obtest.RandomDataForTest(t, 3000)

	q := outbound.NewQueue()
	q.Enqueue(s.Remote(), data[:1000])
	q.Enqueue(s.Remote(), data[1000:])

	n, err := s.Flush(q)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, data, slices.Concat(rec.Sent...))
	require.False(t, q.HasPending())
}

func TestSender_Flush_reportsFailuresWithoutRetrying(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	rec := obquictest.NewDatagramRecorder("127.0.0.1:3000")
	attempts := 0
	rec.Fail = func(d []byte) error {
		attempts++
		if string(d) == "bad" {
			return errBoom
		}
		return nil
	}

	s, err := obquic.NewSender(obtest.NewLogger(t), obquic.SenderConfig{
		Conn:              rec,
		IgnoreFrameBudget: true,
	})
	require.NoError(t, err)

	q := outbound.NewQueue()
	for _, p := range []string{"ok1", "bad", "ok2", "bad", "ok3"} {
		q.Enqueue(s.Remote(), []byte(p))
	}

	n, err := s.Flush(q)
	require.Equal(t, 3, n)
	require.ErrorIs(t, err, errBoom)

	var fe *obquic.FlushError
	require.ErrorAs(t, err, &fe)
	require.Len(t, fe.Unsent, 2)
	for _, m := range fe.Unsent {
		require.Equal(t, []byte("bad"), m.Payload)
		require.Equal(t, s.Remote(), m.Destination)
	}

	require.Equal(t, [][]byte{[]byte("ok1"), []byte("ok2"), []byte("ok3")}, rec.Sent)
	require.Equal(t, 5, attempts)

	// Failed messages were drained; the queue does not retry them.
	require.False(t, q.HasPending())
	n, err = s.Flush(q)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, 5, attempts)
}

func TestSender_Flush_datagramTooLarge(t *testing.T) {
	t.Parallel()

	rec := obquictest.NewDatagramRecorder("127.0.0.1:3000")
	rec.Fail = func(d []byte) error {
		if len(d) > 4 {
			return &quic.DatagramTooLargeError{MaxDatagramPayloadSize: 4}
		}
		return nil
	}

	s, err := obquic.NewSender(obtest.NewLogger(t), obquic.SenderConfig{Conn: rec})
	require.NoError(t, err)

	q := outbound.NewQueue()
	q.SetFrameBudgetBytes(100)
	q.Enqueue(s.Remote(), []byte("toolarge"))
	q.Enqueue(s.Remote(), []byte("fine"))

	n, err := s.Flush(q)
	require.Equal(t, 1, n)

	var tooLarge *quic.DatagramTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	require.Equal(t, int64(4), tooLarge.MaxDatagramPayloadSize)

	var fe *obquic.FlushError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, []outbound.Message{
		{Destination: s.Remote(), Payload: []byte("toolarge")},
	}, fe.Unsent)
}

func TestMeasurement_Apply(t *testing.T) {
	t.Parallel()

	q := outbound.NewQueue()
	q.Enqueue(obtest.AddrPort(t, "127.0.0.1:3000"), []byte("x"))

	obquic.Measurement{
		RTT:              1500 * time.Microsecond,
		PacketLoss:       0.25,
		FrameBudgetBytes: 1350,
	}.Apply(q)

	require.Equal(t, int64(1_500_000), q.LatencyNanos())
	require.Equal(t, int64(1), q.LatencyMillis())
	require.Equal(t, int64(1500), q.LatencyMicros())
	require.Equal(t, float32(0.25), q.PacketLoss())
	require.Equal(t, int32(1350), q.FrameBudgetBytes())

	// Reporting conditions does not touch the queued messages.
	require.Equal(t, 1, q.Len())
}
