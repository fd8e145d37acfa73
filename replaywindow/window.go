// Package replaywindow implements the DTLS anti-replay sliding window
// described in spec §3: a 64-bit bitmap plus a right-edge sequence
// number, one instance per read epoch.
package replaywindow

// Window tracks which of the last 64 sequence numbers up to and
// including rightEdge have already been accepted. The bitmap bit i
// (0-indexed from the low bit) represents sequence number
// rightEdge-i; bit 0 always represents rightEdge itself once any
// record has been accepted.
type Window struct {
	rightEdge uint64
	bitmap    uint64
	seenAny   bool
}

// New returns an empty Window (no sequence number seen yet).
func New() *Window {
	return &Window{}
}

// RightEdge returns the largest sequence number ever accepted.
func (w *Window) RightEdge() uint64 {
	return w.rightEdge
}

// Check reports whether seq is new under the sliding-window rule in
// spec §3, without recording it. A sequence s is new iff s >
// right-edge, or s is within [right-edge-63, right-edge-1] and the
// corresponding bit is unset. Anything at or below right-edge-64, or
// an already-set bit, is rejected. Callers must commit acceptance
// with Update only once the record has actually been MAC-verified —
// Check alone must never advance the window, or a forged record could
// shift the window and cause a later legitimate record to be dropped.
func (w *Window) Check(seq uint64) bool {
	if !w.seenAny {
		return true
	}

	switch {
	case seq > w.rightEdge:
		return true

	case seq == w.rightEdge:
		return false

	default:
		back := w.rightEdge - seq
		if back >= 64 {
			return false
		}
		return w.bitmap&(uint64(1)<<back) == 0
	}
}

// Update commits seq as accepted, advancing the right edge and/or
// marking its bit. Callers must only call Update for a seq that Check
// most recently reported true for, and only after that record's MAC
// has been verified, per the §3 invariant that the right edge is
// exactly the largest sequence number ever MAC-verified.
func (w *Window) Update(seq uint64) {
	if !w.seenAny {
		w.seenAny = true
		w.rightEdge = seq
		w.bitmap = 1
		return
	}

	switch {
	case seq > w.rightEdge:
		shift := seq - w.rightEdge
		w.bitmap = saturatingShiftLeft(w.bitmap, shift) | 1
		w.rightEdge = seq

	case seq == w.rightEdge:
		// Already the right edge; Check should have rejected this
		// seq before a caller ever gets here.

	default:
		back := w.rightEdge - seq
		if back < 64 {
			w.bitmap |= uint64(1) << back
		}
	}
}

// saturatingShiftLeft shifts v left by n bits, returning 0 once n
// reaches 64 or more instead of relying on Go's defined-but-surprising
// shift-by->=width semantics; DESIGN NOTES §9 calls this out
// explicitly ("shifting by >= 64 is undefined in some languages").
func saturatingShiftLeft(v uint64, n uint64) uint64 {
	if n >= 64 {
		return 0
	}
	return v << n
}
