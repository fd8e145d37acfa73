// Package wire implements C5: converting a record.CipherText to and
// from wire bytes, and validating a freshly deserialized CipherText
// against the rules in spec §4.3.
//
// Header parsing and emission go through
// golang.org/x/crypto/cryptobyte, the same library BoringSSL's own Go
// DTLS test runner (ssl/test/runner/dtls.go) uses to build and read
// its record headers, rather than manual byte-slicing.
package wire

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"

	"github.com/embeddedtls/recordproto/record"
)

// Serialize emits ct as wire bytes: content-type (1), protocol
// version (2), [epoch (2) + explicit sequence number (6), DTLS only],
// payload length (2), payload.
func Serialize(ct *record.CipherText) ([]byte, error) {
	if len(ct.Payload) > record.MaxCiphertextLen {
		return nil, fmt.Errorf("wire: ciphertext payload too large to serialize (%d bytes): %w", len(ct.Payload), record.ErrSerialize)
	}

	b := cryptobyte.NewBuilder(make([]byte, 0, headerLen(ct.Datagram())+len(ct.Payload)))
	b.AddUint8(uint8(ct.ContentType()))
	b.AddUint8(ct.Version().Major)
	b.AddUint8(ct.Version().Minor)

	if ct.Datagram() {
		b.AddUint16(uint16(ct.Epoch()))
		add48(b, ct.Seq())
	}

	b.AddUint16LengthPrefixed(func(child *cryptobyte.Builder) {
		child.AddBytes(ct.Payload)
	})

	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("wire: building record bytes: %w: %v", record.ErrSerialize, err)
	}
	return out, nil
}

func headerLen(datagram bool) int {
	if datagram {
		return record.DTLSHeaderLen
	}
	return record.TLSHeaderLen
}

// add48 appends a 48-bit big-endian integer, used for the DTLS
// explicit sequence number field.
func add48(b *cryptobyte.Builder, v uint64) {
	b.AddUint8(uint8(v >> 40))
	b.AddUint8(uint8(v >> 32))
	b.AddUint8(uint8(v >> 24))
	b.AddUint8(uint8(v >> 16))
	b.AddUint8(uint8(v >> 8))
	b.AddUint8(uint8(v))
}
