package bulkcrypto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embeddedtls/recordproto/record"
)

func pairedParams(cipherAlg record.CipherAlgorithm, macAlg record.MACAlgorithm, keyLen, ivLen int, etm bool) (client, server *record.SecurityParameters) {
	key := func(n int, fill byte) []byte {
		b := make([]byte, n)
		for i := range b {
			b[i] = fill
		}
		return b
	}

	base := record.SecurityParameters{
		CipherAlgorithm:   cipherAlg,
		MACAlgorithm:      macAlg,
		ClientWriteKey:    key(keyLen, 0x11),
		ServerWriteKey:    key(keyLen, 0x22),
		ClientWriteMACKey: key(macAlg.Size(), 0x33),
		ServerWriteMACKey: key(macAlg.Size(), 0x44),
		ClientWriteIV:     key(ivLen, 0x55),
		ServerWriteIV:     key(ivLen, 0x66),
		EncryptThenMAC:    etm,
	}
	c := base
	c.Role = record.RoleClient
	s := base
	s.Role = record.RoleServer
	return &c, &s
}

func roundTrip(t *testing.T, suite Suite, client, server *record.SecurityParameters, payload []byte) {
	t.Helper()

	ct := record.NewCompressedText(record.ContentTypeApplicationData, record.VersionTLS12, false,
		record.DirectionWrite, record.EpochClear, 0, 0, 7, append([]byte{}, payload...))
	cipherText, err := suite.Encrypt(ct, client)
	require.NoError(t, err)

	incoming := record.NewCipherText(record.ContentTypeApplicationData, record.VersionTLS12, false,
		record.DirectionRead, record.EpochClear, 0, 7, 0, cipherText.Payload)
	decrypted, err := suite.Decrypt(incoming, server)
	require.NoError(t, err)
	require.Equal(t, payload, decrypted.Payload)
}

func TestNullNullRoundTrip(t *testing.T) {
	suite := NewNullNull()
	client, server := pairedParams(record.CipherNull, record.MACNone, 0, 0, false)
	roundTrip(t, suite, client, server, []byte("hello"))
}

func TestNullMACRoundTripSHA256(t *testing.T) {
	suite := NewNullMACSHA256()
	client, server := pairedParams(record.CipherNull, record.MACHMACSHA256, 0, 0, false)
	roundTrip(t, suite, client, server, []byte("integrity only"))
}

func TestNullMACTamperedPayloadFailsScenarioS6(t *testing.T) {
	suite := NewNullMACSHA256()
	client, server := pairedParams(record.CipherNull, record.MACHMACSHA256, 0, 0, false)

	ct := record.NewCompressedText(record.ContentTypeApplicationData, record.VersionTLS12, false,
		record.DirectionWrite, record.EpochClear, 0, 0, 7, []byte("authentic"))
	cipherText, err := suite.Encrypt(ct, client)
	require.NoError(t, err)

	tampered := append([]byte{}, cipherText.Payload...)
	tampered[0] ^= 0xFF

	incoming := record.NewCipherText(record.ContentTypeApplicationData, record.VersionTLS12, false,
		record.DirectionRead, record.EpochClear, 0, 7, 0, tampered)
	_, err = suite.Decrypt(incoming, server)
	require.ErrorIs(t, err, record.ErrMacMismatch)
}

func TestCBCHMACRoundTripMACThenEncrypt(t *testing.T) {
	suite := NewCBCHMACSHA256()
	client, server := pairedParams(record.CipherAESCBC, record.MACHMACSHA256, 16, 0, false)
	roundTrip(t, suite, client, server, []byte("this is a message longer than one AES block of sixteen bytes"))
}

func TestCBCHMACRoundTripEncryptThenMAC(t *testing.T) {
	suite := NewCBCHMACSHA384()
	client, server := pairedParams(record.CipherAESCBC, record.MACHMACSHA384, 32, 0, true)
	roundTrip(t, suite, client, server, []byte("short"))
}

func TestCBCHMACEncryptThenMACRejectsBadTagScenarioS6(t *testing.T) {
	suite := NewCBCHMACSHA256()
	client, server := pairedParams(record.CipherAESCBC, record.MACHMACSHA256, 16, 0, true)

	ct := record.NewCompressedText(record.ContentTypeApplicationData, record.VersionTLS12, false,
		record.DirectionWrite, record.EpochClear, 0, 0, 3, []byte("payload"))
	cipherText, err := suite.Encrypt(ct, client)
	require.NoError(t, err)

	tampered := append([]byte{}, cipherText.Payload...)
	tampered[len(tampered)-1] ^= 0x01

	incoming := record.NewCipherText(record.ContentTypeApplicationData, record.VersionTLS12, false,
		record.DirectionRead, record.EpochClear, 0, 3, 0, tampered)
	_, err = suite.Decrypt(incoming, server)
	require.ErrorIs(t, err, record.ErrMacMismatch)
}

func TestPadAndRemovePaddingRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 17, 31, 32, 100} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}
		padded := pad(data, 16)
		require.Zero(t, len(padded)%16)
		recovered, ok := removePadding(padded)
		require.True(t, ok)
		require.Equal(t, data, recovered)
	}
}

// TestGCMScenarioS4 reproduces spec scenario S4: a DTLS record at
// epoch 1, sequence 0, encrypted under AES-GCM. The explicit nonce
// sent on the wire must equal the big-endian encoding of the record's
// implicit sequence number, epoch<<48|seq.
func TestGCMScenarioS4(t *testing.T) {
	suite := NewGCM128()
	client, server := pairedParams(record.CipherAESGCM, record.MACNone, 16, 4, false)

	ct := record.NewCompressedText(record.ContentTypeApplicationData, record.VersionDTLS12, true,
		record.DirectionWrite, record.Epoch(1), 0, 0, 0, []byte("application data over dtls"))
	cipherText, err := suite.Encrypt(ct, client)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, cipherText.Payload[:8])

	incoming := record.NewCipherText(record.ContentTypeApplicationData, record.VersionDTLS12, true,
		record.DirectionRead, record.Epoch(1), 0, 0, 0, cipherText.Payload)
	decrypted, err := suite.Decrypt(incoming, server)
	require.NoError(t, err)
	require.Equal(t, []byte("application data over dtls"), decrypted.Payload)
}

func TestGCMTamperedTagFailsScenarioS6(t *testing.T) {
	suite := NewGCM256()
	client, server := pairedParams(record.CipherAESGCM, record.MACNone, 32, 4, false)

	ct := record.NewCompressedText(record.ContentTypeApplicationData, record.VersionTLS12, false,
		record.DirectionWrite, record.EpochClear, 0, 0, 2, []byte("secret"))
	cipherText, err := suite.Encrypt(ct, client)
	require.NoError(t, err)

	tampered := append([]byte{}, cipherText.Payload...)
	tampered[len(tampered)-1] ^= 0x01

	incoming := record.NewCipherText(record.ContentTypeApplicationData, record.VersionTLS12, false,
		record.DirectionRead, record.EpochClear, 0, 2, 0, tampered)
	_, err = suite.Decrypt(incoming, server)
	require.ErrorIs(t, err, record.ErrMacMismatch)
}

func TestSuiteExpansionValues(t *testing.T) {
	require.Equal(t, 0, NewNullNull().Expansion())
	require.Equal(t, 20, NewNullMACSHA1().Expansion())
	require.Equal(t, 32, NewNullMACSHA256().Expansion())
	require.Equal(t, 16+32+16, NewCBCHMACSHA256().Expansion())
	require.Equal(t, 16+48+16, NewCBCHMACSHA384().Expansion())
	require.Equal(t, 8+16, NewGCM128().Expansion())
	require.Equal(t, 8+16, NewGCM256().Expansion())
}
