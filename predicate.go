package outbound

import "net/netip"

// Predicate decides whether a message should be drained.
// It has the signature accepted by [*Queue.DrainMatching].
type Predicate = func(*Message) bool

// ToDestination returns a predicate matching messages addressed to dst.
func ToDestination(dst netip.AddrPort) Predicate {
	return func(m *Message) bool {
		return m.Destination == dst
	}
}

// WithinBudget returns a predicate that matches messages
// as long as their payloads fit in the remaining budget of n bytes.
// Every match subtracts the payload length from the remaining budget.
//
// A message that does not fit is skipped,
// and a later, smaller message may still match.
// A budget of zero or less matches nothing,
// including empty payloads.
//
// The returned predicate is stateful,
// so build a new one for every drain.
func WithinBudget(n int) Predicate {
	remaining := n
	return func(m *Message) bool {
		if remaining <= 0 || len(m.Payload) > remaining {
			return false
		}
		remaining -= len(m.Payload)
		return true
	}
}

// All returns a predicate matching messages that every one of ps matches.
// The predicates are evaluated in order and evaluation stops
// at the first one that does not match,
// so stateful predicates such as [WithinBudget] belong last.
//
// All with no arguments matches every message.
func All(ps ...Predicate) Predicate {
	return func(m *Message) bool {
		for _, p := range ps {
			if !p(m) {
				return false
			}
		}
		return true
	}
}

// Any returns a predicate matching messages that at least one of ps matches.
// Evaluation stops at the first match.
//
// Any with no arguments matches nothing.
func Any(ps ...Predicate) Predicate {
	return func(m *Message) bool {
		for _, p := range ps {
			if p(m) {
				return true
			}
		}
		return false
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(m *Message) bool {
		return !p(m)
	}
}
