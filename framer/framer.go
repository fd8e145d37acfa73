// Package framer reassembles transport byte chunks into whole wire
// records, the way the teacher's unexported frameReader backs
// DefaultRecordLayer in record-layer.go, generalized into its own
// package since spec §4.1 treats it as an independently testable
// component.
package framer

import "github.com/embeddedtls/recordproto/record"

// Framer accumulates bytes handed to it by the transport and yields
// whole wire records as soon as enough bytes have arrived. It never
// errors: an undersized buffer simply yields nothing, and malformed
// headers are caught downstream by wire.Validate.
type Framer struct {
	headerLen int
	datagram  bool
	buf       []byte
}

// NewTLS returns a Framer for the 5-byte TLS record header.
func NewTLS() *Framer {
	return &Framer{headerLen: record.TLSHeaderLen}
}

// NewDTLS returns a Framer for the 13-byte DTLS record header.
func NewDTLS() *Framer {
	return &Framer{headerLen: record.DTLSHeaderLen, datagram: true}
}

// AddData appends newly received transport bytes to the internal
// buffer.
func (f *Framer) AddData(b []byte) {
	f.buf = append(f.buf, b...)
}

// NextRecord returns the next whole wire record (header + payload) if
// one is fully buffered, consuming it from the internal buffer. The
// returned slice is a copy; callers may mutate or retain it freely.
func (f *Framer) NextRecord() ([]byte, bool) {
	if len(f.buf) < f.headerLen {
		return nil, false
	}

	length := int(f.buf[f.headerLen-2])<<8 | int(f.buf[f.headerLen-1])
	total := f.headerLen + length
	if len(f.buf) < total {
		return nil, false
	}

	out := make([]byte, total)
	copy(out, f.buf[:total])

	remaining := make([]byte, len(f.buf)-total)
	copy(remaining, f.buf[total:])
	f.buf = remaining

	return out, true
}

// Pending reports how many bytes are currently buffered, awaiting a
// complete record.
func (f *Framer) Pending() int {
	return len(f.buf)
}
