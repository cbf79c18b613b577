package obtest

import (
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
)

// NewLogger returns a logger whose output is attached to t,
// so it is only shown for failing or verbose tests.
func NewLogger(t testing.TB) *slog.Logger {
	t.Helper()

	return slogt.New(t)
}
