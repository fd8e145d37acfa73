package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embeddedtls/recordproto/alert"
	"github.com/embeddedtls/recordproto/bulkcrypto"
	"github.com/embeddedtls/recordproto/compression"
	"github.com/embeddedtls/recordproto/record"
	"github.com/embeddedtls/recordproto/wire"
)

func openTLS(t *testing.T, role record.Role) (*RecordProtocol, *collector) {
	t.Helper()
	p := New(DefaultTLSConfig(role), nil)
	c := &collector{}
	require.NoError(t, p.Open(c.callbacks()))
	require.NoError(t, p.Connect())
	return p, c
}

// collector records every callback RecordProtocol invokes, for
// assertions without standing up a real transport or handshake layer.
type collector struct {
	sentWire    [][]byte
	appData     [][]byte
	handshake   [][]byte
	retransmits []bool
	alerts      []alert.Alert
	changeSpecs int
	closed      bool
	closeReason error
}

func (c *collector) callbacks() Callbacks {
	return Callbacks{
		OnSendToTransport: func(b []byte) { c.sentWire = append(c.sentWire, append([]byte{}, b...)) },
		OnApplicationData: func(b []byte) { c.appData = append(c.appData, append([]byte{}, b...)) },
		OnHandshakeData: func(b []byte, isRetransmit bool) {
			c.handshake = append(c.handshake, append([]byte{}, b...))
			c.retransmits = append(c.retransmits, isRetransmit)
		},
		OnAlert:            func(a alert.Alert) { c.alerts = append(c.alerts, a) },
		OnChangeCipherSpec: func() { c.changeSpecs++ },
		OnClose:            func(reason error) { c.closed = true; c.closeReason = reason },
	}
}

// TestSendMessageScenarioS1 reproduces spec scenario S1: a TLS
// application_data record sent under the null cipher suite serializes
// to exactly the bytes RFC 5246 prescribes for an unencrypted record.
func TestSendMessageScenarioS1(t *testing.T) {
	p, c := openTLS(t, record.RoleClient)
	require.NoError(t, p.SendMessage(record.ContentTypeApplicationData, []byte("hello")))

	require.Len(t, c.sentWire, 1)
	require.Equal(t, []byte{0x17, 0x03, 0x03, 0x00, 0x05, 'h', 'e', 'l', 'l', 'o'}, c.sentWire[0])
}

func TestSendMessageFragmentsAcrossBudget(t *testing.T) {
	p, c := openTLS(t, record.RoleClient)
	p.writeSP.RecordSizeLimit = 4

	require.NoError(t, p.SendMessage(record.ContentTypeApplicationData, []byte("twelve bytes")))
	require.Len(t, c.sentWire, 3)
	for _, rec := range c.sentWire {
		require.LessOrEqual(t, len(rec)-record.TLSHeaderLen, 4)
	}
}

func TestSendMessageOnClosedConnectionFails(t *testing.T) {
	p, _ := openTLS(t, record.RoleClient)
	require.NoError(t, p.CloseDown(nil))
	err := p.SendMessage(record.ContentTypeApplicationData, []byte("x"))
	require.Error(t, err)
}

// TestLoopbackApplicationDataOverAESGCM exercises a full two-party
// TLS exchange under a real negotiated cipher (not null), the way a
// handshake layer would install it after key derivation.
func TestLoopbackApplicationDataOverAESGCM(t *testing.T) {
	client, clientCB := openTLS(t, record.RoleClient)
	server, serverCB := openTLS(t, record.RoleServer)

	sp := sharedGCMParameters()
	require.NoError(t, client.SetWriteSecurityParameters(sp, bulkcrypto.NewGCM128(), compression.NewNull()))
	require.NoError(t, server.SetReadSecurityParameters(sp, bulkcrypto.NewGCM128(), compression.NewNull()))

	clientCB.sentWire = nil
	require.NoError(t, client.SendMessage(record.ContentTypeApplicationData, []byte("over gcm")))
	require.Len(t, clientCB.sentWire, 1)

	require.NoError(t, server.HandleReceivedDataFromTransport(clientCB.sentWire[0]))
	require.Len(t, serverCB.appData, 1)
	require.Equal(t, []byte("over gcm"), serverCB.appData[0])
}

func sharedGCMParameters() *record.SecurityParameters {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}
	iv := make([]byte, 4)
	for i := range iv {
		iv[i] = byte(i + 1)
	}
	return &record.SecurityParameters{
		Role:            record.RoleClient,
		CipherAlgorithm: record.CipherAESGCM,
		CipherSuiteID:   record.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		ClientWriteKey:  key,
		ServerWriteKey:  key,
		ClientWriteIV:   iv,
		ServerWriteIV:   iv,
		RecordSizeLimit: record.DefaultRecordSizeLimit,
	}
}

func TestTamperedRecordTriggersBadRecordMACAndCloses(t *testing.T) {
	client, clientCB := openTLS(t, record.RoleClient)
	server, serverCB := openTLS(t, record.RoleServer)

	sp := sharedGCMParameters()
	require.NoError(t, client.SetWriteSecurityParameters(sp, bulkcrypto.NewGCM128(), compression.NewNull()))
	require.NoError(t, server.SetReadSecurityParameters(sp, bulkcrypto.NewGCM128(), compression.NewNull()))

	require.NoError(t, client.SendMessage(record.ContentTypeApplicationData, []byte("tampered")))
	tampered := append([]byte{}, clientCB.sentWire[0]...)
	tampered[len(tampered)-1] ^= 0xFF

	require.ErrorIs(t, server.HandleReceivedDataFromTransport(tampered), record.ErrMacMismatch)
	require.Empty(t, serverCB.appData)
	require.True(t, serverCB.closed)
	require.Equal(t, StateClosed, server.State())
}

func TestSendAlertFatalClosesConnection(t *testing.T) {
	p, c := openTLS(t, record.RoleClient)
	require.NoError(t, p.SendAlert(alert.LevelFatal, alert.DescriptionInternalError))
	require.True(t, c.closed)
	require.Equal(t, StateClosed, p.State())
}

func TestDTLSReplayedRecordIsDroppedNotDelivered(t *testing.T) {
	client := New(DefaultDTLSConfig(record.RoleClient), nil)
	clientCB := &collector{}
	require.NoError(t, client.Open(clientCB.callbacks()))

	server := New(DefaultDTLSConfig(record.RoleServer), nil)
	serverCB := &collector{}
	require.NoError(t, server.Open(serverCB.callbacks()))

	require.NoError(t, client.Connect())
	require.NoError(t, server.Connect())

	require.NoError(t, client.SendMessage(record.ContentTypeApplicationData, []byte("once")))
	require.Len(t, clientCB.sentWire, 1)
	wireBytes := clientCB.sentWire[0]

	require.NoError(t, server.HandleReceivedDataFromTransport(wireBytes))
	require.NoError(t, server.HandleReceivedDataFromTransport(wireBytes))
	require.Len(t, serverCB.appData, 1)
}

func TestIncreaseEpochRejectedForTLS(t *testing.T) {
	p, _ := openTLS(t, record.RoleClient)
	_, err := p.IncreaseEpoch(record.DirectionWrite)
	require.ErrorIs(t, err, record.ErrConfiguration)
}

func TestIncreaseEpochResetsDTLSWriteCounter(t *testing.T) {
	p := New(DefaultDTLSConfig(record.RoleClient), nil)
	c := &collector{}
	require.NoError(t, p.Open(c.callbacks()))
	require.NoError(t, p.Connect())

	require.NoError(t, p.SendMessage(record.ContentTypeApplicationData, []byte("epoch 0")))
	epoch, err := p.IncreaseEpoch(record.DirectionWrite)
	require.NoError(t, err)
	require.Equal(t, record.Epoch(1), epoch)
	require.Equal(t, uint64(0), p.writeSeqByEpoch[epoch])
}

func TestResetSecurityParametersReinstallsNullSuite(t *testing.T) {
	p, _ := openTLS(t, record.RoleClient)
	sp := sharedGCMParameters()
	require.NoError(t, p.SetWriteSecurityParameters(sp, bulkcrypto.NewGCM128(), compression.NewNull()))

	p.ResetSecurityParameters()
	require.Equal(t, record.CipherNull, p.writeSP.CipherAlgorithm)
}

func TestUseMostRecentClientHelloSequenceNumberRecordsSeq(t *testing.T) {
	p := New(DefaultDTLSConfig(record.RoleServer), nil)
	c := &collector{}
	require.NoError(t, p.Open(c.callbacks()))

	p.UseMostRecentClientHelloSequenceNumber(7)
	require.NotNil(t, p.lastEpochZeroSeq)
	require.Equal(t, uint64(7), *p.lastEpochZeroSeq)
}

func TestOnCipherSuiteSelectedResolvesTrio(t *testing.T) {
	p, _ := openTLS(t, record.RoleClient)
	suite, err := p.OnCipherSuiteSelected(record.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256)
	require.NoError(t, err)
	require.NotNil(t, suite.BulkEncryption)
}

// TestApplicationDataRejectedBeforeConnect covers the outbound half of
// testable property 9: ApplicationData sent before Connect has been
// called is rejected. The inbound half (a fatal unexpected_message
// alert and close) is TestInboundApplicationDataBeforeConnectClosesWithFatalAlert.
func TestApplicationDataRejectedBeforeConnect(t *testing.T) {
	p := New(DefaultTLSConfig(record.RoleClient), nil)
	c := &collector{}
	require.NoError(t, p.Open(c.callbacks()))

	err := p.SendMessage(record.ContentTypeApplicationData, []byte("too early"))
	require.ErrorIs(t, err, record.ErrUnexpectedMessage)
}

func TestInboundApplicationDataBeforeConnectClosesWithFatalAlert(t *testing.T) {
	client := New(DefaultTLSConfig(record.RoleClient), nil)
	clientCB := &collector{}
	require.NoError(t, client.Open(clientCB.callbacks()))
	require.NoError(t, client.Connect())

	server := New(DefaultTLSConfig(record.RoleServer), nil)
	serverCB := &collector{}
	require.NoError(t, server.Open(serverCB.callbacks()))
	// server is deliberately left un-Connect()-ed.

	require.NoError(t, client.SendMessage(record.ContentTypeApplicationData, []byte("early")))
	require.ErrorIs(t, server.HandleReceivedDataFromTransport(clientCB.sentWire[0]), record.ErrUnexpectedMessage)

	require.Empty(t, serverCB.appData)
	require.True(t, serverCB.closed)
	require.Equal(t, StateClosed, server.State())
	require.Len(t, serverCB.sentWire, 1)
	sentAlert, err := alert.Decode(serverCB.sentWire[0][len(serverCB.sentWire[0])-2:])
	require.NoError(t, err)
	require.Equal(t, alert.LevelFatal, sentAlert.Level)
	require.Equal(t, alert.DescriptionUnexpectedMessage, sentAlert.Description)
}

func TestConnectDisconnectTogglesApplicationDataGate(t *testing.T) {
	p, _ := openTLS(t, record.RoleClient) // openTLS already calls Connect
	require.Equal(t, StateActive, p.State())

	require.NoError(t, p.Disconnect())
	require.Equal(t, StateOpened, p.State())
	require.False(t, p.Connected())

	err := p.SendMessage(record.ContentTypeApplicationData, []byte("x"))
	require.ErrorIs(t, err, record.ErrUnexpectedMessage)

	require.NoError(t, p.Connect())
	require.True(t, p.Connected())
	require.NoError(t, p.SendMessage(record.ContentTypeApplicationData, []byte("x")))
}

// TestSendHelloVerifyRequestDoesNotAdvanceSequence covers the sequence
// half of testable property 10: two HelloVerifyRequests are sent and
// neither advances the DTLS write sequence counter. No write
// parameters are installed here, so the null-cipher half is not
// exercised.
func TestSendHelloVerifyRequestDoesNotAdvanceSequence(t *testing.T) {
	p := New(DefaultDTLSConfig(record.RoleServer), nil)
	c := &collector{}
	require.NoError(t, p.Open(c.callbacks()))

	before := p.writeSeqByEpoch[record.EpochClear]
	require.NoError(t, p.SendHelloVerifyRequest([]byte{0x01, 0x02}))
	require.Equal(t, before, p.writeSeqByEpoch[record.EpochClear])

	require.NoError(t, p.SendHelloVerifyRequest([]byte{0x03, 0x04}))
	require.Equal(t, before, p.writeSeqByEpoch[record.EpochClear])
	require.Len(t, c.sentWire, 2)
}

// TestHandshakeDataDispatchedWithFreshFlag reproduces spec scenario
// S2: a fresh (non-retransmitted) handshake record is dispatched via
// OnHandshakeData with isRetransmit=false.
func TestHandshakeDataDispatchedWithFreshFlag(t *testing.T) {
	p, c := openTLS(t, record.RoleClient)
	// Use SendMessage to get a wire-correct record to feed to a fresh
	// server, exercising the ContentTypeHandshake dispatch path.
	require.NoError(t, p.SendMessage(record.ContentTypeHandshake, []byte{0x0b, 0x00}))
	require.Len(t, c.sentWire, 1)

	server := New(DefaultTLSConfig(record.RoleServer), nil)
	serverCB := &collector{}
	require.NoError(t, server.Open(serverCB.callbacks()))
	require.NoError(t, server.HandleReceivedDataFromTransport(c.sentWire[0]))

	require.Len(t, serverCB.handshake, 1)
	require.Equal(t, []byte{0x0b, 0x00}, serverCB.handshake[0])
	require.Equal(t, []bool{false}, serverCB.retransmits)
}

// TestHandshakeDataDispatchedWithRetransmitFlag reproduces testable
// property 5 (DTLS epoch-0 ClientHello retransmission): once a
// ClientHello sequence number has been recorded via
// UseMostRecentClientHelloSequenceNumber, a record carrying the same
// or an earlier sequence number at epoch 0 is handed to
// OnHandshakeData with isRetransmit=true rather than reprocessed.
func TestHandshakeDataDispatchedWithRetransmitFlag(t *testing.T) {
	server := New(DefaultDTLSConfig(record.RoleServer), nil)
	serverCB := &collector{}
	require.NoError(t, server.Open(serverCB.callbacks()))
	server.UseMostRecentClientHelloSequenceNumber(3)

	clientHello := []byte{0x01, 0x00, 0x00, 0x02, 0xAA, 0xBB}
	ct := record.NewCipherText(record.ContentTypeHandshake, record.VersionDTLS12, true,
		record.DirectionWrite, record.EpochClear, 3, 0, 0, clientHello)
	wireBytes, err := wire.Serialize(ct)
	require.NoError(t, err)

	require.NoError(t, server.HandleReceivedDataFromTransport(wireBytes))

	require.Len(t, serverCB.handshake, 1)
	require.Equal(t, clientHello, serverCB.handshake[0])
	require.Equal(t, []bool{true}, serverCB.retransmits)
}

// TestSendBudgetSubtractsWriteSuiteExpansion reproduces spec §4.6
// outbound step 1: the effective plaintext budget is the negotiated
// record_size_limit minus the currently installed write suite's
// record expansion, not the raw limit.
func TestSendBudgetSubtractsWriteSuiteExpansion(t *testing.T) {
	p, c := openTLS(t, record.RoleClient)
	sp := sharedGCMParameters()
	sp.RecordSizeLimit = 30
	require.NoError(t, p.SetWriteSecurityParameters(sp, bulkcrypto.NewGCM128(), compression.NewNull()))

	got, err := p.sendBudget()
	require.NoError(t, err)
	require.Equal(t, 30-bulkcrypto.NewGCM128().Expansion(), got)

	require.NoError(t, p.SendMessage(record.ContentTypeApplicationData, []byte("six")))
	require.Len(t, c.sentWire, 1)
}

// TestSendBudgetRejectsExpansionEqualToLimit reproduces spec §4.6
// outbound step 1's "if <= 0, this is a configuration error" clause,
// at the boundary where the expansion uses up the whole limit.
func TestSendBudgetRejectsExpansionEqualToLimit(t *testing.T) {
	p, _ := openTLS(t, record.RoleClient)
	sp := sharedGCMParameters()
	sp.RecordSizeLimit = uint16(bulkcrypto.NewGCM128().Expansion())
	require.NoError(t, p.SetWriteSecurityParameters(sp, bulkcrypto.NewGCM128(), compression.NewNull()))

	_, err := p.sendBudget()
	require.ErrorIs(t, err, record.ErrConfiguration)

	err = p.SendMessage(record.ContentTypeApplicationData, []byte("x"))
	require.ErrorIs(t, err, record.ErrConfiguration)
}
