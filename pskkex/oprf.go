package pskkex

import (
	"crypto"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/embeddedtls/recordproto/record"
)

// OPRFRequest is the blinded request a client sends to begin PSK
// provisioning: a masked point derived from the client's low-entropy
// secret, so the server learns nothing about the secret itself.
type OPRFRequest struct {
	Ax, Ay *big.Int
}

// OPRFResponse is the server's answer: its evaluation of the blinded
// point under its own long-term OPRF key, plus the corresponding
// public key so the client can unblind.
type OPRFResponse struct {
	Bx, By *big.Int
	Vx, Vy *big.Int
}

// OPRF runs one side of a Diffie-Hellman oblivious PRF, used by
// Provisioner to turn a client-held low-entropy secret into a PSK
// neither party could have derived from the secret alone.
type OPRF struct {
	hash crypto.Hash
	crv  elliptic.Curve

	// client state
	x []byte
	r []byte

	// server state
	k      []byte
	vx, vy *big.Int
}

// NewOPRFClient returns the client side of an OPRF exchange.
func NewOPRFClient(hash crypto.Hash, crv elliptic.Curve) *OPRF {
	return &OPRF{hash: hash, crv: crv}
}

// NewOPRFServer returns the server side, generating its long-term
// OPRF evaluation key.
func NewOPRFServer(hash crypto.Hash, crv elliptic.Curve) (*OPRF, error) {
	k, vx, vy, err := elliptic.GenerateKey(crv, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("pskkex: oprf server key generation: %w", record.ErrCryptoFailure)
	}
	return &OPRF{hash: hash, crv: crv, k: k, vx: vx, vy: vy}, nil
}

// CreateRequest blinds secret with a fresh random mask.
func (o *OPRF) CreateRequest(secret []byte) (*OPRFRequest, error) {
	r, rx, ry, err := elliptic.GenerateKey(o.crv, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("pskkex: oprf blinding: %w", record.ErrCryptoFailure)
	}
	o.x = secret
	o.r = r

	hx, hy := hashToCurve(secret, o.hash, o.crv)
	ax, ay := o.crv.Add(hx, hy, rx, ry)
	return &OPRFRequest{Ax: ax, Ay: ay}, nil
}

// HandleRequest evaluates a client's blinded request under the
// server's OPRF key, without ever learning the client's secret.
func (o *OPRF) HandleRequest(req *OPRFRequest) *OPRFResponse {
	bx, by := o.crv.ScalarMult(req.Ax, req.Ay, o.k)
	return &OPRFResponse{Bx: bx, By: by, Vx: o.vx, Vy: o.vy}
}

// HandleResponse unblinds the server's evaluation and derives the
// final PSK material on the client side. The server side derives no
// output of its own; the result depends on the secret and the
// server's OPRF key, not on the random blinding mask.
func (o *OPRF) HandleResponse(resp *OPRFResponse) []byte {
	ri := big.NewInt(0).SetBytes(o.r)
	ri.Sub(o.crv.Params().N, ri)

	negRVx, negRVy := o.crv.ScalarMult(resp.Vx, resp.Vy, ri.Bytes())
	khx, khy := o.crv.Add(resp.Bx, resp.By, negRVx, negRVy)

	h := o.hash.New()
	h.Write(o.x)
	h.Write(resp.Vx.Bytes())
	h.Write(resp.Vy.Bytes())
	h.Write(khx.Bytes())
	h.Write(khy.Bytes())
	return h.Sum(nil)
}
