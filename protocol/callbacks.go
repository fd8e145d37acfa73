package protocol

import "github.com/embeddedtls/recordproto/alert"

// Callbacks is the struct-of-funcs RecordProtocol reports back through,
// replacing the teacher's single opaque pointer-receiver callback with
// named hooks per spec §6 external interface. Any left nil is treated
// as a no-op.
type Callbacks struct {
	// OnSendToTransport is invoked with wire bytes that must be
	// handed to the UDP/TCP socket this connection owns.
	OnSendToTransport func(wire []byte)

	// OnApplicationData is invoked with the payload of each received
	// application_data record; a message sent as several records
	// arrives as several calls and is not reassembled here.
	OnApplicationData func(data []byte)

	// OnHandshakeData is invoked with the payload of each received
	// handshake record, left to the (out-of-scope) handshake layer to
	// parse and reassemble.
	// isRetransmit is true when the record that carried this message
	// was already seen at this sequence number (DTLS retransmission),
	// so the handshake layer can re-send its last flight instead of
	// re-processing it.
	OnHandshakeData func(data []byte, isRetransmit bool)

	// OnAlert is invoked when a peer alert is received.
	OnAlert func(a alert.Alert)

	// OnChangeCipherSpec is invoked when a change_cipher_spec message
	// is received, signaling the handshake layer should install the
	// pending read SecurityParameters.
	OnChangeCipherSpec func()

	// OnClose is invoked once the connection has fully torn down,
	// whether by local request, peer close_notify, or a fatal alert.
	OnClose func(reason error)
}

func (c Callbacks) sendToTransport(wire []byte) {
	if c.OnSendToTransport != nil {
		c.OnSendToTransport(wire)
	}
}

func (c Callbacks) applicationData(data []byte) {
	if c.OnApplicationData != nil {
		c.OnApplicationData(data)
	}
}

func (c Callbacks) handshakeData(data []byte, isRetransmit bool) {
	if c.OnHandshakeData != nil {
		c.OnHandshakeData(data, isRetransmit)
	}
}

func (c Callbacks) alertReceived(a alert.Alert) {
	if c.OnAlert != nil {
		c.OnAlert(a)
	}
}

func (c Callbacks) changeCipherSpec() {
	if c.OnChangeCipherSpec != nil {
		c.OnChangeCipherSpec()
	}
}

func (c Callbacks) closed(reason error) {
	if c.OnClose != nil {
		c.OnClose(reason)
	}
}
