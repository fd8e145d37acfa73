package bulkcrypto

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/embeddedtls/recordproto/record"
)

// NullMAC provides integrity only, no confidentiality: used by suites
// like TLS_PSK_WITH_NULL_SHA256 and TLS_ECDHE_ECDSA_WITH_NULL_SHA1.
type NullMAC struct {
	newHash func() hash.Hash
	tagLen  int
}

// NewNullMACSHA1 backs TLS_ECDHE_ECDSA_WITH_NULL_SHA1.
func NewNullMACSHA1() *NullMAC { return &NullMAC{newHash: sha1.New, tagLen: 20} }

// NewNullMACSHA256 backs TLS_PSK_WITH_NULL_SHA256.
func NewNullMACSHA256() *NullMAC { return &NullMAC{newHash: sha256.New, tagLen: 32} }

func (n *NullMAC) InitEncryptor(*record.SecurityParameters) error { return nil }
func (n *NullMAC) InitDecryptor(*record.SecurityParameters) error { return nil }
func (n *NullMAC) Expansion() int                                 { return n.tagLen }

func (n *NullMAC) Encrypt(ct *record.CompressedText, sp *record.SecurityParameters) (*record.CipherText, error) {
	plaintext := ct.Payload
	tag := n.tag(sp.WriteMACKey(), ct.ImplicitSeq(), ct.ContentType(), ct.Version(), plaintext)

	out := make([]byte, 0, len(plaintext)+len(tag))
	out = append(out, plaintext...)
	out = append(out, tag...)
	return ct.IntoCipherText(out), nil
}

func (n *NullMAC) Decrypt(ct *record.CipherText, sp *record.SecurityParameters) (*record.CompressedText, error) {
	if len(ct.Payload) < n.tagLen {
		return nil, fmt.Errorf("bulkcrypto: null-mac payload shorter than tag: %w", record.ErrMacMismatch)
	}
	plainLen := len(ct.Payload) - n.tagLen
	plaintext := ct.Payload[:plainLen]
	given := ct.Payload[plainLen:]

	computed := n.tag(sp.ReadMACKey(), ct.ImplicitSeq(), ct.ContentType(), ct.Version(), plaintext)
	if !hmac.Equal(computed, given) {
		return nil, record.ErrMacMismatch
	}

	out := make([]byte, plainLen)
	copy(out, plaintext)
	return ct.IntoCompressed(out), nil
}

func (n *NullMAC) tag(key []byte, seq uint64, ct record.ContentType, ver record.ProtocolVersion, plaintext []byte) []byte {
	mac := hmac.New(n.newHash, key)
	mac.Write(macInput(seq, ct, ver, plaintext))
	return mac.Sum(nil)
}
