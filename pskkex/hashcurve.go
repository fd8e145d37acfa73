package pskkex

import (
	"crypto"
	"crypto/elliptic"
	"math/big"
)

// hashToBase and mapToCurveSWU together implement the
// simplified-SWU hash-to-curve construction used to turn an arbitrary
// byte string (a PSK identity's low-entropy secret) into a point on
// the OPRF's curve, so the point OPRF.CreateRequest blinds is never an
// attacker-chosen curve point.
func hashToBase(x []byte, hash crypto.Hash, crv elliptic.Curve) *big.Int {
	h := hash.New()
	h.Write(x)
	b := h.Sum(nil)

	// Truncate. Assumes the hash output is at least as wide as the
	// curve modulus, true for every (hash, curve) pairing this
	// package constructs.
	p := crv.Params().P
	bits := uint(p.BitLen())
	bytes := bits >> 3
	bits = bits & 0x07
	b = b[:bytes]
	b[bytes-1] &= byte(0xff) >> (8 - bits)

	n := big.NewInt(0).SetBytes(b)
	n = n.Mod(n, p)
	return n
}

func cmov(a, b *big.Int, c bool) *big.Int {
	if c {
		return a
	}
	return b
}

func mapToCurveSWU(t *big.Int, crv elliptic.Curve) (x, y *big.Int) {
	p := crv.Params().P
	a := big.NewInt(0).Sub(p, big.NewInt(3))
	b := crv.Params().B

	ainv := big.NewInt(0).ModInverse(a, p)

	p4 := big.NewInt(0)
	p4.Add(p, big.NewInt(1)).Rsh(p4, 2)

	one := big.NewInt(1)
	three := big.NewInt(3)

	alpha := big.NewInt(0)
	right := big.NewInt(0)
	left := big.NewInt(0)
	h2 := big.NewInt(0)
	h3 := big.NewInt(0)
	i2 := big.NewInt(0)
	i3 := big.NewInt(0)
	x2 := big.NewInt(0)
	x3 := big.NewInt(0)
	y1 := big.NewInt(0)
	y2 := big.NewInt(0)
	y1s := big.NewInt(0)

	alpha.Mul(t, t).Mod(alpha, p)
	alpha.Sub(p, alpha)
	right.Mul(alpha, alpha).Add(right, alpha).Mod(right, p)
	right.ModInverse(right, p)
	right.Add(right, one).Mod(right, p)
	left.Sub(p, b)
	left.Mul(left, ainv).Mod(left, p)
	x2.Mul(left, right).Mod(x2, p)
	x3.Mul(alpha, x2).Mod(x3, p)
	h2.Exp(x2, three, p)
	i2.Mul(x2, a).Mod(i2, p)
	i2.Add(i2, b).Mod(i2, p)
	h2.Add(h2, i2).Mod(h2, p)
	h3.Exp(x3, three, p)
	i3.Mul(x3, a).Mod(i3, p)
	i3.Add(i3, b).Mod(i3, p)
	h3.Add(h3, i3).Mod(h3, p)
	y1.Exp(h2, p4, p)
	y2.Exp(h3, p4, p)
	e := (y1s.Mul(y1, y1).Mod(y1s, p).Cmp(h2) == 0)
	x = cmov(x2, x3, e)
	y = cmov(y1, y2, e)

	return
}

// hashToCurve maps alpha onto a point on crv, following the
// two-hash-then-add construction so the result is indistinguishable
// from a uniformly random curve point.
func hashToCurve(alpha []byte, hash crypto.Hash, crv elliptic.Curve) (x, y *big.Int) {
	alpha0 := append([]byte{0}, alpha...)
	t0 := hashToBase(alpha0, hash, crv)
	x0, y0 := mapToCurveSWU(t0, crv)

	alpha1 := append([]byte{1}, alpha...)
	t1 := hashToBase(alpha1, hash, crv)
	x1, y1 := mapToCurveSWU(t1, crv)

	return crv.Add(x0, y0, x1, y1)
}
