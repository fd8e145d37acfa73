// Package record holds the wire-level data model shared by every stage of
// the TLS/DTLS 1.2 record pipeline: content types, protocol versions,
// epochs, security parameters, and the three record-stage types
// (PlainText, CompressedText, CipherText) that flow through it.
package record

// ContentType is the one-byte tag carried on every TLS/DTLS record,
// identifying which of the four sub-protocols produced it.
type ContentType uint8

// Content types defined by RFC 5246 §6.2.1 / RFC 6347. Any other value
// decodes successfully but is rejected by the Validator.
const (
	ContentTypeChangeCipherSpec ContentType = 20
	ContentTypeAlert            ContentType = 21
	ContentTypeHandshake        ContentType = 22
	ContentTypeApplicationData  ContentType = 23
)

// Valid reports whether ct is one of the four content types this
// protocol understands.
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentTypeChangeCipherSpec, ContentTypeAlert, ContentTypeHandshake, ContentTypeApplicationData:
		return true
	default:
		return false
	}
}

func (ct ContentType) String() string {
	switch ct {
	case ContentTypeChangeCipherSpec:
		return "change_cipher_spec"
	case ContentTypeAlert:
		return "alert"
	case ContentTypeHandshake:
		return "handshake"
	case ContentTypeApplicationData:
		return "application_data"
	default:
		return "unknown"
	}
}
