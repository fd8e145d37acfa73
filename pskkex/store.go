// Package pskkex provides the out-of-band PSK identity resolution
// that TLS_PSK_* cipher suites need: given a PSK identity presented in
// a handshake, resolve it to key material the record layer's
// SecurityParameters can be populated with. The record protocol core
// never calls into the OPRF machinery directly — it only needs
// Store.Lookup — but the provisioning half (Provisioner) is what
// populates a Store from a low-entropy secret without that secret, or
// the resulting PSK, ever crossing the wire in the clear.
package pskkex

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/embeddedtls/recordproto/record"
)

// Store resolves PSK identities to key material, encrypted at rest.
// The zero value is not usable; construct with NewStore.
type Store struct {
	mu          sync.RWMutex
	wrappingKey []byte
	envelopes   map[string][]byte
}

// NewStore returns a Store whose entries are wrapped under
// wrappingKey, an already AES-128-sized key. Prefer NewStoreFromSecret
// when the caller only has an arbitrary-length operator secret.
func NewStore(wrappingKey []byte) *Store {
	return &Store{
		wrappingKey: wrappingKey,
		envelopes:   make(map[string][]byte),
	}
}

// storeWrappingKeyInfo labels the HKDF expansion NewStoreFromSecret
// runs, keeping a Store's at-rest key cryptographically distinct from
// any PSK a Provisioner derives from the same underlying secret.
var storeWrappingKeyInfo = []byte("pskkex store wrapping key v1")

// NewStoreFromSecret derives a Store's wrapping key from an arbitrary-
// length operator-supplied secret via HKDF, rather than requiring the
// caller to pre-size it to AES-128's 16 bytes itself.
func NewStoreFromSecret(secret []byte) (*Store, error) {
	key, err := deriveKey(secret, storeWrappingKeyInfo, 16)
	if err != nil {
		return nil, err
	}
	return NewStore(key), nil
}

// Put registers psk under identity, sealed with the store's wrapping
// key. aad binds the envelope to its identity so a ciphertext copied
// to a different identity fails to open.
func (s *Store) Put(identity string, psk []byte) error {
	sealed, err := sealEnvelope(s.wrappingKey, aadFor(identity), psk)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelopes[identity] = sealed
	return nil
}

// Lookup resolves identity to its PSK. It returns a
// record.ErrConfiguration wrapping error if the identity is unknown,
// and a record.ErrCryptoFailure wrapping error if its envelope fails
// to open.
func (s *Store) Lookup(identity string) ([]byte, error) {
	s.mu.RLock()
	sealed, ok := s.envelopes[identity]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("pskkex: unknown identity %q: %w", identity, record.ErrConfiguration)
	}
	return openEnvelope(s.wrappingKey, aadFor(identity), sealed)
}

func aadFor(identity string) []byte {
	sum := sha256.Sum256([]byte(identity))
	return sum[:]
}
