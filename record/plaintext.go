package record

// PlainText is the first pipeline stage: raw, unprotected content
// straight off the Fragmenter (outbound) or straight off the
// Compression.Decompress step (inbound).
type PlainText struct {
	meta
	Payload []byte
}

// NewPlainText constructs a PlainText for the outbound path.
func NewPlainText(ct ContentType, ver ProtocolVersion, datagram bool, dir Direction, epoch Epoch, seq, readSeq, writeSeq uint64, payload []byte) *PlainText {
	return &PlainText{
		meta: meta{
			contentType: ct,
			version:     ver,
			datagram:    datagram,
			direction:   dir,
			epoch:       epoch,
			seq:         seq,
			readSeq:     readSeq,
			writeSeq:    writeSeq,
		},
		Payload: payload,
	}
}

// IntoCompressed moves this PlainText's metadata onto a new
// CompressedText carrying the already-transformed payload. p must not
// be used again.
func (p *PlainText) IntoCompressed(payload []byte) *CompressedText {
	m := p.meta.take()
	p.Payload = nil
	return &CompressedText{meta: m, Payload: payload}
}
