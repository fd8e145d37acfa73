package record

// CompressedText is the second pipeline stage: output of
// Compression.Compress (outbound) or input to Compression.Decompress
// (inbound). Only the null compression transform exists, so its
// Payload is always byte-identical to the adjacent PlainText's.
type CompressedText struct {
	meta
	Payload []byte
}

// NewCompressedText constructs a CompressedText directly, used when a
// stage must be synthesized outside the normal pipeline (e.g. the
// send_hello_verify_request path, which bypasses compression
// entirely).
func NewCompressedText(ct ContentType, ver ProtocolVersion, datagram bool, dir Direction, epoch Epoch, seq, readSeq, writeSeq uint64, payload []byte) *CompressedText {
	return &CompressedText{
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

// IntoCipherText moves this CompressedText's metadata onto a new
// CipherText carrying the already-encrypted payload (outbound path).
func (c *CompressedText) IntoCipherText(payload []byte) *CipherText {
	m := c.meta.take()
	c.Payload = nil
	return &CipherText{meta: m, Payload: payload}
}

// IntoPlainText moves this CompressedText's metadata onto a new
// PlainText carrying the already-decompressed payload (inbound path).
func (c *CompressedText) IntoPlainText(payload []byte) *PlainText {
	m := c.meta.take()
	c.Payload = nil
	return &PlainText{meta: m, Payload: payload}
}
