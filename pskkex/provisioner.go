package pskkex

import (
	"crypto"
	"crypto/elliptic"
)

// Provisioner runs the client side of OPRF-based PSK provisioning: it
// turns a long-term low-entropy secret (e.g. an operator-chosen
// passphrase) into PSK material suitable for a Store entry, without
// ever sending the secret itself to the party running Responder.
type Provisioner struct {
	oprf *OPRF
}

// NewProvisioner returns a client-side Provisioner bound to curve and
// hash, matching a Responder constructed with the same parameters.
func NewProvisioner(hash crypto.Hash, crv elliptic.Curve) *Provisioner {
	return &Provisioner{oprf: NewOPRFClient(hash, crv)}
}

// Begin blinds secret into a request, safe to send to a Responder.
func (p *Provisioner) Begin(secret []byte) (*OPRFRequest, error) {
	return p.oprf.CreateRequest(secret)
}

// pskInfoLabel binds the HKDF expansion in Finish to this exact use,
// so the same OPRF output could not be reused as key material for an
// unrelated purpose without colliding.
var pskInfoLabel = []byte("pskkex binder secret v1")

// pskLength is the size of the PSK material Finish derives, sized for
// SecurityParameters.ClientWriteKey/ServerWriteKey use under the
// AES-256 suites. ciphersuite.Make takes no key material, so nothing
// in this module shortens it for suites with smaller keys.
const pskLength = 32

// Finish unblinds a Responder's answer and runs the raw OPRF output
// through HKDF (RFC 5869) to produce PSK material fit to hand to
// Store.Put, rather than using the OPRF output directly as a key.
func (p *Provisioner) Finish(resp *OPRFResponse) ([]byte, error) {
	raw := p.oprf.HandleResponse(resp)
	return deriveKey(raw, pskInfoLabel, pskLength)
}

// Responder runs the server side of OPRF-based PSK provisioning.
type Responder struct {
	oprf *OPRF
}

// NewResponder returns a server-side Responder with a freshly
// generated long-term OPRF key.
func NewResponder(hash crypto.Hash, crv elliptic.Curve) (*Responder, error) {
	oprf, err := NewOPRFServer(hash, crv)
	if err != nil {
		return nil, err
	}
	return &Responder{oprf: oprf}, nil
}

// Evaluate answers a Provisioner's blinded request.
func (r *Responder) Evaluate(req *OPRFRequest) *OPRFResponse {
	return r.oprf.HandleRequest(req)
}
