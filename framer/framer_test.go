package framer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTLSFramerWaitsForWholeRecord(t *testing.T) {
	f := NewTLS()

	header := []byte{0x17, 0x03, 0x03, 0x00, 0x05}
	f.AddData(header)
	_, ok := f.NextRecord()
	require.False(t, ok, "header alone should not yield a record")

	f.AddData([]byte("hel"))
	_, ok = f.NextRecord()
	require.False(t, ok, "partial payload should not yield a record")

	f.AddData([]byte("lo"))
	rec, ok := f.NextRecord()
	require.True(t, ok)
	require.Equal(t, append(header, []byte("hello")...), rec)
}

func TestTLSFramerRetainsTrailingPartialRecord(t *testing.T) {
	f := NewTLS()
	first := []byte{0x17, 0x03, 0x03, 0x00, 0x02, 'h', 'i'}
	second := []byte{0x17, 0x03, 0x03, 0x00, 0x03, 'b', 'y'} // one byte short

	f.AddData(first)
	f.AddData(second)

	rec, ok := f.NextRecord()
	require.True(t, ok)
	require.Equal(t, first, rec)

	_, ok = f.NextRecord()
	require.False(t, ok, "trailing partial record should not be returned yet")
	require.Equal(t, len(second), f.Pending())

	f.AddData([]byte{'e'})
	rec, ok = f.NextRecord()
	require.True(t, ok)
	require.Equal(t, append(second, 'e'), rec)
}

func TestDTLSFramerUsesThirteenByteHeader(t *testing.T) {
	f := NewDTLS()
	header := []byte{22, 254, 253, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3}
	f.AddData(header)
	_, ok := f.NextRecord()
	require.False(t, ok)

	f.AddData([]byte("abc"))
	rec, ok := f.NextRecord()
	require.True(t, ok)
	require.Len(t, rec, record_DTLSHeaderLen+3)
}

const record_DTLSHeaderLen = 13
