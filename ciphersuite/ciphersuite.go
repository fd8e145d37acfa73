// Package ciphersuite composes the three independent axes spec §6
// names for every negotiated cipher suite — key exchange, peer
// authentication, and bulk encryption — into one CipherSuite value per
// record.CipherSuiteID. Only the bulk-encryption axis has record-layer
// behavior (it backs a bulkcrypto.Suite); KeyExchange and
// Authentication are closed identifiers the handshake layer consumes,
// carried here so a CipherSuiteID maps to its full trio in one place
// rather than three.
package ciphersuite

import "github.com/embeddedtls/recordproto/record"

// KeyExchange identifies the key-agreement method a suite negotiates.
// The record layer never performs key exchange itself; it only needs
// to know which suites are PSK suites so pskkex can be selected as
// the handshake's credential source.
type KeyExchange uint8

const (
	KeyExchangeNone KeyExchange = iota
	KeyExchangeECDHE
	KeyExchangePSK
)

func (k KeyExchange) String() string {
	switch k {
	case KeyExchangeECDHE:
		return "ECDHE"
	case KeyExchangePSK:
		return "PSK"
	default:
		return "none"
	}
}

// Authentication identifies the peer-authentication method a suite
// negotiates.
type Authentication uint8

const (
	AuthenticationNone Authentication = iota
	AuthenticationECDSA
	AuthenticationPSK
)

func (a Authentication) String() string {
	switch a {
	case AuthenticationECDSA:
		return "ECDSA"
	case AuthenticationPSK:
		return "PSK"
	default:
		return "none"
	}
}

// BulkEncryption is the record layer's stage-transform contract. It
// declares the same method set as bulkcrypto.Suite, so every
// bulkcrypto.Suite satisfies it and callers only need this package's
// import to hold a full trio.
type BulkEncryption interface {
	InitEncryptor(sp *record.SecurityParameters) error
	InitDecryptor(sp *record.SecurityParameters) error
	Encrypt(ct *record.CompressedText, sp *record.SecurityParameters) (*record.CipherText, error)
	Decrypt(ct *record.CipherText, sp *record.SecurityParameters) (*record.CompressedText, error)
	Expansion() int
}

// CipherSuite is the full trio for one negotiated record.CipherSuiteID.
type CipherSuite struct {
	ID             record.CipherSuiteID
	KeyExchange    KeyExchange
	Authentication Authentication
	BulkEncryption BulkEncryption
}
