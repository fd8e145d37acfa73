// Package compression implements C6: the PlainText<->CompressedText
// stage transform. Only the identity ("null") implementation exists,
// kept behind a two-method interface as the design seam spec §4.4
// calls for so a real compression algorithm could be added later
// without disturbing the pipeline shape.
package compression

import "github.com/embeddedtls/recordproto/record"

// Suite transforms a PlainText into a CompressedText and back.
// Implementations must preserve content type and version exactly.
type Suite interface {
	Compress(pt *record.PlainText) *record.CompressedText
	Decompress(ct *record.CompressedText) *record.PlainText
}

// Null is the identity compression suite: the payload is moved
// unchanged, metadata is copied.
type Null struct{}

// NewNull returns the identity compression suite.
func NewNull() Null { return Null{} }

func (Null) Compress(pt *record.PlainText) *record.CompressedText {
	return pt.IntoCompressed(pt.Payload)
}

func (Null) Decompress(ct *record.CompressedText) *record.PlainText {
	return ct.IntoPlainText(ct.Payload)
}
