package record

// Wire-format header lengths. See spec §4.1: the length field is
// always the last two bytes of the header.
const (
	TLSHeaderLen  = 5
	DTLSHeaderLen = 13
)

// Size limits enforced by the Validator (spec §3 invariants).
const (
	MaxPlaintextLen       = 1 << 14
	MaxCiphertextOverhead = 2048
	MaxCiphertextLen      = MaxPlaintextLen + MaxCiphertextOverhead
)

// Sequence-number ceilings. Reaching either forces connection close
// before the counter wraps (spec §9 DESIGN NOTES: "explicit saturating
// arithmetic is required").
const (
	MaxTLSSequence  uint64 = 1<<64 - 2
	MaxDTLSSequence uint64 = 1<<48 - 2
)

// DefaultRecordSizeLimit is the default negotiated record_size_limit,
// matching TLSPlaintext.length's RFC 5246 ceiling.
const DefaultRecordSizeLimit = MaxPlaintextLen
