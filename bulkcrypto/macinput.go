package bulkcrypto

import (
	"encoding/binary"

	"github.com/embeddedtls/recordproto/record"
)

// macInput builds the 13-byte header plus plaintext that every MAC
// (Null-MAC, CBC+HMAC) is computed over, per spec §4.5: 8-byte
// sequence number, 1-byte content type, 2-byte protocol version,
// 2-byte length, then the bytes being authenticated.
func macInput(implicitSeq uint64, ct record.ContentType, ver record.ProtocolVersion, authenticated []byte) []byte {
	out := make([]byte, 13+len(authenticated))
	binary.BigEndian.PutUint64(out[0:8], implicitSeq)
	out[8] = byte(ct)
	out[9] = ver.Major
	out[10] = ver.Minor
	binary.BigEndian.PutUint16(out[11:13], uint16(len(authenticated)))
	copy(out[13:], authenticated)
	return out
}

// aeadAdditionalData builds the AES-GCM additional-data input: the
// same 13-byte header macInput uses, but never includes the payload
// bytes themselves (AEAD authenticates the payload through Seal/Open
// directly).
func aeadAdditionalData(implicitSeq uint64, ct record.ContentType, ver record.ProtocolVersion, plaintextLen int) []byte {
	out := make([]byte, 13)
	binary.BigEndian.PutUint64(out[0:8], implicitSeq)
	out[8] = byte(ct)
	out[9] = ver.Major
	out[10] = ver.Minor
	binary.BigEndian.PutUint16(out[11:13], uint16(plaintextLen))
	return out
}
