package obtest

import (
	"net/netip"
	"testing"
)

// AddrPort parses s as a [netip.AddrPort],
// failing the test immediately if it is malformed.
func AddrPort(t testing.TB, s string) netip.AddrPort {
	t.Helper()

	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		t.Fatalf("invalid address %q: %v", s, err)
	}
	return ap
}
