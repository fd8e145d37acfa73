package ciphersuite

import (
	"fmt"

	"github.com/embeddedtls/recordproto/bulkcrypto"
	"github.com/embeddedtls/recordproto/record"
)

// Make builds the CipherSuite trio for id. This is the closed
// enum-and-factory dispatch the DESIGN NOTES call for: every
// record.CipherSuiteID spec §6 lists has exactly one entry here, and
// an unlisted id is a configuration error, not a panic.
func Make(id record.CipherSuiteID) (*CipherSuite, error) {
	switch id {
	case record.TLS_NULL_WITH_NULL_NULL:
		return &CipherSuite{
			ID:             id,
			KeyExchange:    KeyExchangeNone,
			Authentication: AuthenticationNone,
			BulkEncryption: bulkcrypto.NewNullNull(),
		}, nil

	case record.TLS_PSK_WITH_NULL_SHA256:
		return &CipherSuite{
			ID:             id,
			KeyExchange:    KeyExchangePSK,
			Authentication: AuthenticationPSK,
			BulkEncryption: bulkcrypto.NewNullMACSHA256(),
		}, nil

	case record.TLS_PSK_WITH_AES_128_GCM_SHA256:
		return &CipherSuite{
			ID:             id,
			KeyExchange:    KeyExchangePSK,
			Authentication: AuthenticationPSK,
			BulkEncryption: bulkcrypto.NewGCM128(),
		}, nil

	case record.TLS_ECDHE_ECDSA_WITH_NULL_SHA1:
		return &CipherSuite{
			ID:             id,
			KeyExchange:    KeyExchangeECDHE,
			Authentication: AuthenticationECDSA,
			BulkEncryption: bulkcrypto.NewNullMACSHA1(),
		}, nil

	case record.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256:
		return &CipherSuite{
			ID:             id,
			KeyExchange:    KeyExchangeECDHE,
			Authentication: AuthenticationECDSA,
			BulkEncryption: bulkcrypto.NewCBCHMACSHA256(),
		}, nil

	case record.TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA384:
		return &CipherSuite{
			ID:             id,
			KeyExchange:    KeyExchangeECDHE,
			Authentication: AuthenticationECDSA,
			BulkEncryption: bulkcrypto.NewCBCHMACSHA384(),
		}, nil

	case record.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256:
		return &CipherSuite{
			ID:             id,
			KeyExchange:    KeyExchangeECDHE,
			Authentication: AuthenticationECDSA,
			BulkEncryption: bulkcrypto.NewGCM128(),
		}, nil

	case record.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384:
		return &CipherSuite{
			ID:             id,
			KeyExchange:    KeyExchangeECDHE,
			Authentication: AuthenticationECDSA,
			BulkEncryption: bulkcrypto.NewGCM256(),
		}, nil

	default:
		return nil, fmt.Errorf("ciphersuite: %w: unknown suite 0x%04X", record.ErrConfiguration, uint16(id))
	}
}
