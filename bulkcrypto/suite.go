// Package bulkcrypto implements C7: the CompressedText<->CipherText
// stage transform for every bulk-encryption family spec §4.5 lists.
// Encrypt and Decrypt are hand-rolled against crypto/aes, crypto/cipher,
// and crypto/hmac rather than an ecosystem AEAD wrapper: the wire
// format (explicit IV placement, exact padding bytes, MAC placement,
// the TLS 1.2 GCM nonce/AAD construction) is specified byte-for-byte
// by RFC 5246/5288/7366, and no library in the retrieved corpus
// produces it without being unwrapped back into these same
// primitives — censys-oss-dtls's own pkg/crypto/ciphersuite/gcm.go
// does the identical thing directly against crypto/cipher, which is
// the precedent followed here. See DESIGN.md.
package bulkcrypto

import "github.com/embeddedtls/recordproto/record"

// Suite is the C7 interface: stage transform CompressedText <->
// CipherText. All variants consume their input by move (via the
// record package's IntoCipherText/IntoCompressed) and transfer the
// same transformed payload buffer into the output stage.
type Suite interface {
	InitEncryptor(sp *record.SecurityParameters) error
	InitDecryptor(sp *record.SecurityParameters) error
	Encrypt(ct *record.CompressedText, sp *record.SecurityParameters) (*record.CipherText, error)
	Decrypt(ct *record.CipherText, sp *record.SecurityParameters) (*record.CompressedText, error)
	// Expansion returns this suite's worst-case per-record byte
	// expansion (IV/nonce + MAC tag + padding), used by RecordProtocol
	// to size the fragmenter budget per spec §4.5's expansion table.
	Expansion() int
}
