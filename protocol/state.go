package protocol

// State is RecordProtocol's own lifecycle state, independent of
// whatever handshake state machine sits above it.
type State uint8

const (
	StateUninitialized State = iota
	StateOpened
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOpened:
		return "opened"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
