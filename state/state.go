// Package state implements the client-side server-state machine that
// tracks session state across a Bolt connection (§4.5). The state lives on
// the client, not the server: it is the client's best understanding of
// what the server will accept next.
package state

import (
	"fmt"

	"github.com/bolt-go/bolt/message"
)

// State is one node of the server-state machine.
type State int

const (
	Disconnected State = iota
	Connected
	Defunct
	Ready
	Streaming
	TxReady
	TxStreaming
	Failed
	Interrupted
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Connected:
		return "CONNECTED"
	case Defunct:
		return "DEFUNCT"
	case Ready:
		return "READY"
	case Streaming:
		return "STREAMING"
	case TxReady:
		return "TX_READY"
	case TxStreaming:
		return "TX_STREAMING"
	case Failed:
		return "FAILED"
	case Interrupted:
		return "INTERRUPTED"
	default:
		return "UNKNOWN"
	}
}

// IllegalTransitionError means a request was attempted that is never legal
// from the current state, independent of the server's response (e.g. Run
// while Streaming).
type IllegalTransitionError struct {
	State State
	Kind  message.Kind
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("state: %s is not legal in state %s", e.Kind, e.State)
}

// Machine drives the state transition table of §4.5. It holds no I/O; the
// Client feeds it (request kind, response kind, response metadata) pairs
// after each round trip.
type Machine struct {
	version message.Version
	state   State
}

// New returns a Machine starting in Disconnected, for negotiated version v.
func New(v message.Version) *Machine {
	return &Machine{version: v, state: Disconnected}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Opened moves Disconnected → Connected once the socket and handshake
// succeed.
func (m *Machine) Opened() {
	m.state = Connected
}

// Fail forces Defunct, used for I/O errors and any hazard that poisons the
// connection outside the normal response-driven transition (§9 "Async
// cancellation hazards").
func (m *Machine) Fail() {
	m.state = Defunct
}

// CanSend reports whether kind is legal to send in the current state,
// before any response is known. Reset is always legal outside Defunct;
// everything else follows the static shape of the table in §4.5.
func (m *Machine) CanSend(kind message.Kind) bool {
	if m.state == Defunct {
		return false
	}
	if kind == message.KindReset {
		return true
	}
	switch m.state {
	case Connected:
		return kind == message.KindInit || kind == message.KindHello
	case Ready:
		return kind == message.KindRun || kind == message.KindRunWithMetadata ||
			kind == message.KindBegin || kind == message.KindGoodbye
	case Streaming:
		return kind == message.KindPullAll || kind == message.KindPull ||
			kind == message.KindDiscardAll || kind == message.KindDiscard
	case TxReady:
		return kind == message.KindRun || kind == message.KindRunWithMetadata ||
			kind == message.KindCommit || kind == message.KindRollback
	case TxStreaming:
		return kind == message.KindPullAll || kind == message.KindPull ||
			kind == message.KindDiscardAll || kind == message.KindDiscard
	case Failed:
		// Every request is still legal to emit here: non-recovery requests
		// get Ignored and leave the state unchanged (Advance's KindIgnored
		// case). AckFailure is the one exception outside V1/V2, since it
		// only exists as a recovery path pre-V3.
		if kind == message.KindAckFailure {
			return m.version.AtLeastV3() == false
		}
		return true
	default:
		return false
	}
}

// Clone returns an independent copy of m, used to project optimistic state
// transitions (e.g. pipelined writes) without mutating m itself.
func (m *Machine) Clone() *Machine {
	return &Machine{version: m.version, state: m.state}
}

// Advance applies the response to kind sent from the prior state, and
// returns the new state. hasMore reflects Success{has_more} for streaming
// responses (§9 open question (b)); it is ignored for non-streaming kinds.
func (m *Machine) Advance(kind message.Kind, resp message.Kind, hasMore bool) State {
	switch resp {
	case message.KindFailure:
		if kind == message.KindInit || kind == message.KindHello {
			// §4.5 table: Connected + Init/Hello → Failure is fatal, not
			// recoverable via AckFailure/Reset like every other Failure.
			m.state = Defunct
		} else {
			m.state = Failed
		}
		return m.state
	case message.KindIgnored:
		// state unchanged
		return m.state
	}

	// resp == Success from here.
	switch kind {
	case message.KindInit, message.KindHello:
		m.state = Ready
	case message.KindRun, message.KindRunWithMetadata:
		if m.state == TxReady {
			m.state = TxStreaming
		} else {
			m.state = Streaming
		}
	case message.KindPullAll, message.KindDiscardAll:
		if m.state == TxStreaming {
			m.state = TxReady
		} else {
			m.state = Ready
		}
	case message.KindPull, message.KindDiscard:
		if hasMore {
			if m.state == TxStreaming {
				m.state = TxStreaming
			} else {
				m.state = Streaming
			}
		} else {
			if m.state == TxStreaming {
				m.state = TxReady
			} else {
				m.state = Ready
			}
		}
	case message.KindBegin:
		m.state = TxReady
	case message.KindCommit, message.KindRollback:
		m.state = Ready
	case message.KindReset, message.KindAckFailure:
		m.state = Ready
	case message.KindGoodbye:
		m.state = Defunct
	}
	return m.state
}
