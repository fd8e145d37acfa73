package record

import "fmt"

// ProtocolVersion is the (major, minor) pair carried in every record
// header. DTLS encodes its version as the ones' complement of its own
// version number (1.2 becomes 254.253), per RFC 6347 §4.1, which is
// why DTLS 1.2 is (254, 253) rather than TLS 1.2's (3, 3).
type ProtocolVersion struct {
	Major, Minor uint8
}

// Fixed version values this protocol negotiates. DTLS 1.0 is parsed
// only to be rejected: spec scope is DTLS 1.2 wire compatibility.
var (
	VersionTLS12       = ProtocolVersion{3, 3}
	VersionDTLS12      = ProtocolVersion{254, 253}
	VersionDTLS10Legacy = ProtocolVersion{254, 255}
)

// IsDTLS reports whether v is one of the DTLS major/minor pairs.
func (v ProtocolVersion) IsDTLS() bool {
	return v.Major == 254
}

func (v ProtocolVersion) String() string {
	switch v {
	case VersionTLS12:
		return "TLS1.2"
	case VersionDTLS12:
		return "DTLS1.2"
	case VersionDTLS10Legacy:
		return "DTLS1.0-legacy"
	default:
		return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
	}
}
