package wire

import "github.com/embeddedtls/recordproto/record"

// Result is the outcome of validating a freshly deserialized
// CipherText against the current RecordProtocol context, per spec
// §4.3.
type Result int

const (
	// ResultPassed means proceed with the currently installed read
	// cipher suite.
	ResultPassed Result = iota
	// ResultFail is a generic, non-overflow failure. From Validate it
	// is structural (bad content type, or an empty Handshake
	// ciphertext payload) and the caller sends a fatal decode_error
	// alert and closes; from PostValidate it is a version mismatch and
	// the caller sends a fatal protocol_version alert and closes.
	ResultFail
	// ResultDrop means silently discard the record (DTLS replay or
	// wrong-epoch).
	ResultDrop
	// ResultUseNullCipher means this one record must be processed
	// with the null-null cipher suite regardless of installed
	// parameters (DTLS epoch 0 handshake traffic).
	ResultUseNullCipher
	// ResultContainsClientHello is ResultUseNullCipher plus: this
	// record's explicit sequence number must be stashed for later
	// cookie-verify use.
	ResultContainsClientHello
	// ResultRetransmit means the handshake callback should treat this
	// as a retransmit of a flight it has already seen.
	ResultRetransmit
	// ResultOverflow means the ciphertext exceeds the maximum size;
	// the caller sends a fatal record_overflow alert and closes.
	ResultOverflow
)

const handshakeTypeClientHello = 1

// Context carries the pieces of RecordProtocol state the Validator
// needs but does not own: the current read epoch/window (DTLS only)
// and, for epoch-0 DTLS handshake deduplication, the last-seen
// ClientHello sequence number.
type Context struct {
	Datagram        bool
	ReadEpoch       record.Epoch
	Window          Accepter
	LastEpochZeroSeq *uint64 // nil until a ClientHello has been seen
}

// Accepter is satisfied by *replaywindow.Window; declared as an
// interface here so wire does not import replaywindow and create a
// cycle with whatever owns the per-epoch window map. Check is
// read-only: it must not commit seq to the window, since a record
// that reaches Validate has not been MAC-verified yet. The caller
// commits a passed record's sequence number with Window.Update only
// after decryption succeeds, per spec §4.6 inbound step 6.
type Accepter interface {
	Check(seq uint64) bool
}

// Validate runs the common and DTLS-only checks from spec §4.3, in
// the mandated order, short-circuiting on the first failure.
func Validate(ct *record.CipherText, ctx Context) Result {
	if len(ct.Payload) > record.MaxCiphertextLen {
		return ResultOverflow
	}
	if !ct.ContentType().Valid() {
		return ResultFail
	}
	if ct.ContentType() == record.ContentTypeHandshake && len(ct.Payload) == 0 {
		return ResultFail
	}

	if !ctx.Datagram {
		return ResultPassed
	}

	if ct.Epoch() != ctx.ReadEpoch {
		return ResultDrop
	}

	if ctx.Window != nil && !ctx.Window.Check(ct.Seq()) {
		return ResultDrop
	}

	if ctx.ReadEpoch == record.EpochClear && ct.ContentType() == record.ContentTypeHandshake {
		if len(ct.Payload) > 0 && ct.Payload[0] == handshakeTypeClientHello {
			if ctx.LastEpochZeroSeq != nil && ct.Seq() <= *ctx.LastEpochZeroSeq {
				return ResultRetransmit
			}
			return ResultContainsClientHello
		}
		return ResultUseNullCipher
	}

	return ResultPassed
}

// PostValidate runs the post-decryption checks from spec §4.3 on a
// freshly decompressed PlainText: size bound, and version match
// against the connection's negotiated version, exempting the three
// hello messages that must be allowed to carry a different version
// during negotiation.
func PostValidate(pt *record.PlainText, negotiated record.ProtocolVersion) Result {
	if len(pt.Payload) > record.MaxPlaintextLen {
		return ResultOverflow
	}
	if pt.Version() == negotiated {
		return ResultPassed
	}
	if pt.ContentType() == record.ContentTypeHandshake && isVersionExemptHello(pt.Payload) {
		return ResultPassed
	}
	return ResultFail
}

// Handshake message type bytes that are exempt from the negotiated-
// version check because the peer may not know the final version yet.
const (
	handshakeTypeServerHello        = 2
	handshakeTypeHelloVerifyRequest = 3
)

func isVersionExemptHello(payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	switch payload[0] {
	case handshakeTypeClientHello, handshakeTypeServerHello, handshakeTypeHelloVerifyRequest:
		return true
	default:
		return false
	}
}
