package record

// CipherText is the third and final pipeline stage: the bytes that
// travel the wire (wrapped only in the record header by the
// Serializer), or the bytes the Deserializer just reconstructed from
// it.
type CipherText struct {
	meta
	Payload []byte
}

// NewCipherText constructs a CipherText, used by the Deserializer on
// the inbound path.
func NewCipherText(ct ContentType, ver ProtocolVersion, datagram bool, dir Direction, epoch Epoch, seq, readSeq, writeSeq uint64, payload []byte) *CipherText {
	return &CipherText{
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

// IntoCompressed moves this CipherText's metadata onto a new
// CompressedText carrying the already-decrypted payload (inbound
// path).
func (c *CipherText) IntoCompressed(payload []byte) *CompressedText {
	m := c.meta.take()
	c.Payload = nil
	return &CompressedText{meta: m, Payload: payload}
}
