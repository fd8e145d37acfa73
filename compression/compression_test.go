package compression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embeddedtls/recordproto/record"
)

func TestNullCompressionIsIdentity(t *testing.T) {
	suite := NewNull()
	pt := record.NewPlainText(record.ContentTypeApplicationData, record.VersionTLS12, false, record.DirectionWrite, record.EpochClear, 0, 0, 1, []byte("payload"))

	ct := suite.Compress(pt)
	require.Equal(t, []byte("payload"), ct.Payload)
	require.Equal(t, record.ContentTypeApplicationData, ct.ContentType())

	back := suite.Decompress(ct)
	require.Equal(t, []byte("payload"), back.Payload)
	require.Equal(t, record.VersionTLS12, back.Version())
}
