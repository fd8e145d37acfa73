// Package fragment implements C4: splitting outbound user data into
// per-record PlainText objects that respect the effective plaintext
// size budget RecordProtocol computes once per send_message call.
package fragment

import "github.com/embeddedtls/recordproto/record"

// Fragmenter slices a source buffer into PlainText-sized chunks. A new
// Fragmenter is constructed per call to send_message, with the budget
// RecordProtocol computed for the currently installed write cipher
// suite.
type Fragmenter struct {
	src         []byte
	offset      int
	budget      int
	contentType record.ContentType
	datagram    bool
	epoch       record.Epoch
	readSeq     uint64
	writeSeq    uint64
	emittedEmpty bool
}

// New constructs a Fragmenter over src, tagging every emitted
// PlainText with ct and the given epoch/sequence snapshots.
func New(src []byte, budget int, ct record.ContentType, datagram bool, epoch record.Epoch, readSeq, writeSeq uint64) *Fragmenter {
	return &Fragmenter{
		src:         src,
		budget:      budget,
		contentType: ct,
		datagram:    datagram,
		epoch:       epoch,
		readSeq:     readSeq,
		writeSeq:    writeSeq,
	}
}

// Next returns the next PlainText slice, or false once the source is
// exhausted. When the content type is ApplicationData and the source
// is empty, exactly one empty PlainText is emitted (spec §4.2, RFC
// 5246 permits zero-length application_data records); a non-empty
// source never gets a trailing empty record.
func (fr *Fragmenter) Next() ([]byte, bool) {
	if fr.offset < len(fr.src) {
		end := fr.offset + fr.budget
		if end > len(fr.src) {
			end = len(fr.src)
		}
		chunk := fr.src[fr.offset:end]
		fr.offset = end
		return chunk, true
	}

	if fr.contentType == record.ContentTypeApplicationData && len(fr.src) == 0 && !fr.emittedEmpty {
		fr.emittedEmpty = true
		return []byte{}, true
	}

	return nil, false
}

// NextPlainText is the spec-named entry point: it calls Next and, if
// data remains, wraps it as a record.PlainText tagged with the
// sequence snapshot the caller supplies for this particular record
// (DTLS bumps the explicit sequence number per record; TLS's implicit
// counter is tracked entirely by RecordProtocol).
func (fr *Fragmenter) NextPlainText(seq uint64) (*record.PlainText, bool) {
	chunk, ok := fr.Next()
	if !ok {
		return nil, false
	}
	payload := make([]byte, len(chunk))
	copy(payload, chunk)
	return record.NewPlainText(fr.contentType, versionFor(fr.datagram), fr.datagram, record.DirectionWrite, fr.epoch, seq, fr.readSeq, fr.writeSeq, payload), true
}

func versionFor(datagram bool) record.ProtocolVersion {
	if datagram {
		return record.VersionDTLS12
	}
	return record.VersionTLS12
}
