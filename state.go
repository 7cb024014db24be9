package rfcgrid

import "sync/atomic"

// State is the lifecycle of a communicator or the acceptor/connector
// wrapping it. The zero value is None.
type State int32

const (
	// None is the initial state before accept/reject is called.
	None State = iota
	// Accepting is the transitional state while accept's handshake is
	// in flight.
	Accepting
	// Open is the steady state: sends and joins are legal.
	Open
	// Closing is the transitional state while close's teardown is in
	// flight.
	Closing
	// Closed is terminal; every operation except join is illegal.
	Closed
	// Rejecting is the transitional state while reject's teardown is
	// in flight, reached only from None.
	Rejecting
)

func (s State) String() string {
	switch s {
	case None:
		return "NONE"
	case Accepting:
		return "ACCEPTING"
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	case Rejecting:
		return "REJECTING"
	default:
		return "UNKNOWN"
	}
}

// stateHolder is an atomically-updated State, embedded by Communicator
// and by transport acceptor/connector types so both share the same
// transition rules.
type stateHolder struct {
	v atomic.Int32
}

func (h *stateHolder) load() State { return State(h.v.Load()) }
func (h *stateHolder) store(s State) { h.v.Store(int32(s)) }

// transition atomically moves from "from" to "to", reporting whether
// the compare-and-swap succeeded. Callers use this to guard against
// concurrent double-accept/double-close.
func (h *stateHolder) transition(from, to State) bool {
	return h.v.CompareAndSwap(int32(from), int32(to))
}

// inspect maps the current state to the error the spec's component
// table requires for illegal operations. A nil return means the
// requested kind of operation ("sender" or "join") is currently legal.
func inspect(s State, op string) error {
	switch op {
	case "sender":
		if s == Open {
			return nil
		}
		return ErrStateViolation
	case "join":
		if s == Open || s == Closing || s == Closed {
			return nil
		}
		return ErrStateViolation
	case "close":
		if s == Open {
			return nil
		}
		return ErrStateViolation
	case "accept", "reject":
		if s == None {
			return nil
		}
		return ErrStateViolation
	default:
		return ErrStateViolation
	}
}
