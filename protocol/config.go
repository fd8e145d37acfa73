package protocol

import "github.com/embeddedtls/recordproto/record"

// Config is the immutable-after-construction configuration a
// RecordProtocol is opened with: which flavor of the wire format to
// speak, which role this endpoint plays, and the negotiated version
// PostValidate checks against, fixed for the life of the
// RecordProtocol.
type Config struct {
	Datagram         bool
	Role             record.Role
	NegotiatedVersion record.ProtocolVersion
}

// DefaultTLSConfig returns a Config for a TLS 1.2 client or server
// before any version negotiation has occurred.
func DefaultTLSConfig(role record.Role) Config {
	return Config{Datagram: false, Role: role, NegotiatedVersion: record.VersionTLS12}
}

// DefaultDTLSConfig returns a Config for a DTLS 1.2 client or server.
func DefaultDTLSConfig(role record.Role) Config {
	return Config{Datagram: true, Role: role, NegotiatedVersion: record.VersionDTLS12}
}
