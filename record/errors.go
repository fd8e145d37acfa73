package record

import "errors"

// Sentinel errors the pipeline produces. Callers distinguish them with
// errors.Is; each is wrapped with call-site context via fmt.Errorf's
// %w verb rather than carried as a bespoke string type, per the
// DESIGN NOTES "typed result values for recoverable failures".
var (
	ErrSerialize         = errors.New("record: failed to serialize message")
	ErrDeserialize       = errors.New("record: failed to deserialize message")
	ErrCryptoFailure     = errors.New("record: underlying crypto primitive failed")
	ErrMacMismatch       = errors.New("record: MAC verification failed")
	ErrRecordOverflow    = errors.New("record: ciphertext exceeds maximum size")
	ErrPlaintextOverflow = errors.New("record: plaintext exceeds maximum size")
	ErrUnexpectedMessage = errors.New("record: content type not permitted here")
	ErrConfiguration     = errors.New("record: configuration error")
	ErrSequenceExhausted = errors.New("record: sequence number space exhausted")
)
