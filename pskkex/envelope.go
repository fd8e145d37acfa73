package pskkex

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/codahale/etm"
	"golang.org/x/crypto/hkdf"

	"github.com/embeddedtls/recordproto/record"
)

// envelopeNonceLen is the AES-CTR+HMAC nonce size etm.NewAES128SHA256
// expects.
const envelopeNonceLen = 16

// deriveKey runs HKDF-Extract-and-Expand (RFC 5869) over secret,
// producing length bytes of key material labeled by info. Both the
// binder secret a Provisioner hands to a Store and the Store's own
// at-rest wrapping key are raw, unstructured byte strings (an OPRF
// output, an operator-supplied passphrase); neither is safe to feed
// directly to AES, so every secret crosses this function once before
// it is used as a key.
func deriveKey(secret, info []byte, length int) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, nil, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("pskkex: hkdf expand: %w", record.ErrCryptoFailure)
	}
	return out, nil
}

// sealEnvelope encrypts plaintext PSK material at rest under a key
// derived from the OPRF output, using encrypt-then-MAC via
// codahale/etm rather than the record layer's own AES-CBC+HMAC: this
// is storage-at-rest, not a wire record, so it has no RFC-mandated
// byte layout to match, and etm's construction is sufficient.
// A fresh random nonce is generated per call and prepended to the
// returned ciphertext, since reusing a fixed nonce across calls would
// break etm's CTR-mode confidentiality.
func sealEnvelope(key, aad, plaintext []byte) ([]byte, error) {
	aead, err := etm.NewAES128SHA256(key)
	if err != nil {
		return nil, fmt.Errorf("pskkex: envelope cipher setup: %w", record.ErrCryptoFailure)
	}

	nonce := make([]byte, envelopeNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("pskkex: envelope nonce generation: %w", record.ErrCryptoFailure)
	}

	sealed := aead.Seal(nil, nonce, plaintext, aad)
	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// openEnvelope reverses sealEnvelope.
func openEnvelope(key, aad, sealed []byte) ([]byte, error) {
	if len(sealed) < envelopeNonceLen {
		return nil, fmt.Errorf("pskkex: envelope too short: %w", record.ErrCryptoFailure)
	}
	aead, err := etm.NewAES128SHA256(key)
	if err != nil {
		return nil, fmt.Errorf("pskkex: envelope cipher setup: %w", record.ErrCryptoFailure)
	}

	nonce := sealed[:envelopeNonceLen]
	ciphertext := sealed[envelopeNonceLen:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("pskkex: envelope open: %w", record.ErrCryptoFailure)
	}
	return plaintext, nil
}
