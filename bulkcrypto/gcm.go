package bulkcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"github.com/embeddedtls/recordproto/record"
)

// GCM implements the AES-GCM AEAD suites of RFC 5288
// (TLS_ECDHE_ECDSA_WITH_AES_*_GCM_SHA*). The nonce is the 4-byte
// fixed IV derived at key-schedule time concatenated with an 8-byte
// explicit part equal to the record's implicit sequence number, sent
// on the wire ahead of the ciphertext exactly as RFC 5288 §3 requires.
type GCM struct {
	keyLen int
}

// NewGCM128 backs TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256.
func NewGCM128() *GCM { return &GCM{keyLen: 16} }

// NewGCM256 backs TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384.
func NewGCM256() *GCM { return &GCM{keyLen: 32} }

const (
	gcmTagLen          = 16
	gcmFixedIVLen      = 4
	gcmExplicitNonceLen = 8
	gcmNonceLen        = gcmFixedIVLen + gcmExplicitNonceLen
)

func (g *GCM) InitEncryptor(*record.SecurityParameters) error { return nil }
func (g *GCM) InitDecryptor(*record.SecurityParameters) error { return nil }

// Expansion is the 8-byte explicit nonce plus the 16-byte GCM tag, per
// spec §4.5's expansion table entry for the GCM suites.
func (g *GCM) Expansion() int { return gcmExplicitNonceLen + gcmTagLen }

func (g *GCM) Encrypt(ct *record.CompressedText, sp *record.SecurityParameters) (*record.CipherText, error) {
	aead, err := g.open(sp.WriteKey())
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmNonceLen)
	copy(nonce[:gcmFixedIVLen], sp.WriteIV())
	binary.BigEndian.PutUint64(nonce[gcmFixedIVLen:], ct.ImplicitSeq())

	aad := aeadAdditionalData(ct.ImplicitSeq(), ct.ContentType(), ct.Version(), len(ct.Payload))
	sealed := aead.Seal(nil, nonce, ct.Payload, aad)

	out := make([]byte, 0, gcmExplicitNonceLen+len(sealed))
	out = append(out, nonce[gcmFixedIVLen:]...)
	out = append(out, sealed...)
	return ct.IntoCipherText(out), nil
}

func (g *GCM) Decrypt(ct *record.CipherText, sp *record.SecurityParameters) (*record.CompressedText, error) {
	if len(ct.Payload) < gcmExplicitNonceLen+gcmTagLen {
		return nil, record.ErrMacMismatch
	}

	aead, err := g.open(sp.ReadKey())
	if err != nil {
		return nil, err
	}

	explicitNonce := ct.Payload[:gcmExplicitNonceLen]
	sealed := ct.Payload[gcmExplicitNonceLen:]

	nonce := make([]byte, gcmNonceLen)
	copy(nonce[:gcmFixedIVLen], sp.ReadIV())
	copy(nonce[gcmFixedIVLen:], explicitNonce)

	plaintextLen := len(sealed) - gcmTagLen
	aad := aeadAdditionalData(ct.ImplicitSeq(), ct.ContentType(), ct.Version(), plaintextLen)

	plaintext, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("bulkcrypto: gcm open: %w", record.ErrMacMismatch)
	}
	return ct.IntoCompressed(plaintext), nil
}

func (g *GCM) open(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("bulkcrypto: aes key setup: %w", record.ErrCryptoFailure)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("bulkcrypto: gcm setup: %w", record.ErrCryptoFailure)
	}
	return aead, nil
}
