package record

// Epoch is the DTLS 16-bit counter identifying the current cipher
// state. It is a named type, not a bare uint16, so an epoch value can
// never be passed where a sequence number is expected (or vice versa)
// without an explicit conversion.
type Epoch uint16

// EpochClear is the initial, unencrypted epoch every DTLS connection
// starts in.
const EpochClear Epoch = 0

func (e Epoch) label() string {
	if e == EpochClear {
		return "clear"
	}
	return "encrypted"
}
