package wire

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"

	"github.com/embeddedtls/recordproto/record"
)

// Deserialize reverses Serialize, reconstructing a CipherText from
// raw wire bytes. It performs only the parsing the wire format
// requires (it must know how many header bytes to skip); content
// legality is the job of Validate, called separately once the
// CipherText exists, per spec §4.3.
func Deserialize(raw []byte, datagram bool) (*record.CipherText, error) {
	s := cryptobyte.String(raw)

	var ctByte, major, minor uint8
	if !s.ReadUint8(&ctByte) || !s.ReadUint8(&major) || !s.ReadUint8(&minor) {
		return nil, fmt.Errorf("wire: truncated record header: %w", record.ErrDeserialize)
	}

	var epoch record.Epoch
	var seq uint64
	if datagram {
		var epochWord uint16
		if !s.ReadUint16(&epochWord) {
			return nil, fmt.Errorf("wire: truncated DTLS epoch field: %w", record.ErrDeserialize)
		}
		epoch = record.Epoch(epochWord)

		seqBytes := make([]byte, 6)
		if !s.CopyBytes(seqBytes) {
			return nil, fmt.Errorf("wire: truncated DTLS sequence number field: %w", record.ErrDeserialize)
		}
		for _, bb := range seqBytes {
			seq = seq<<8 | uint64(bb)
		}
	}

	var payload cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&payload) {
		return nil, fmt.Errorf("wire: truncated record length/payload: %w", record.ErrDeserialize)
	}

	out := make([]byte, len(payload))
	copy(out, payload)

	return record.NewCipherText(
		record.ContentType(ctByte),
		record.ProtocolVersion{Major: major, Minor: minor},
		datagram,
		record.DirectionRead,
		epoch,
		seq,
		0, 0, // TLS implicit-seq snapshots are filled in by the caller (RecordProtocol knows the current read counter; the wire layer does not).
		out,
	), nil
}
