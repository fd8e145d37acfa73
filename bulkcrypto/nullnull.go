package bulkcrypto

import "github.com/embeddedtls/recordproto/record"

// NullNull is the identity bulk-encryption suite, used only before
// any keying material is established (epoch 0 in DTLS, before the
// first ChangeCipherSpec in TLS).
type NullNull struct{}

// NewNullNull returns the identity bulk-encryption suite.
func NewNullNull() *NullNull { return &NullNull{} }

func (n *NullNull) InitEncryptor(*record.SecurityParameters) error { return nil }
func (n *NullNull) InitDecryptor(*record.SecurityParameters) error { return nil }
func (n *NullNull) Expansion() int                                 { return 0 }

func (n *NullNull) Encrypt(ct *record.CompressedText, _ *record.SecurityParameters) (*record.CipherText, error) {
	return ct.IntoCipherText(ct.Payload), nil
}

func (n *NullNull) Decrypt(ct *record.CipherText, _ *record.SecurityParameters) (*record.CompressedText, error) {
	return ct.IntoCompressed(ct.Payload), nil
}
