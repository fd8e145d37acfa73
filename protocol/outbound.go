package protocol

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/embeddedtls/recordproto/alert"
	"github.com/embeddedtls/recordproto/fragment"
	"github.com/embeddedtls/recordproto/record"
	"github.com/embeddedtls/recordproto/wire"
)

func recordVersion(datagram bool) record.ProtocolVersion {
	if datagram {
		return record.VersionDTLS12
	}
	return record.VersionTLS12
}

// sendBudget returns the largest plaintext chunk a Fragmenter should
// produce: min(record_size_limit, 2^14) minus the record expansion
// the currently installed write suite adds (IV/MAC/tag/padding), per
// spec §4.6 outbound step 1. A suite whose expansion consumes the
// whole negotiated limit is a configuration error, not something the
// Fragmenter should be asked to silently cope with.
func (p *RecordProtocol) sendBudget() (int, error) {
	budget := int(p.writeSP.RecordSizeLimit)
	if budget <= 0 || budget > record.MaxPlaintextLen {
		budget = record.MaxPlaintextLen
	}
	budget -= p.writeBulk.Expansion()
	if budget <= 0 {
		return 0, fmt.Errorf("protocol: write suite expansion leaves no plaintext room within the negotiated record size limit: %w", record.ErrConfiguration)
	}
	return budget, nil
}

// SendMessage is the C9 send_message operation: it fragments data
// into plaintext-budget-sized chunks, then runs each chunk through
// compress -> encrypt -> serialize -> transport, in order, under the
// currently installed write SecurityParameters.
func (p *RecordProtocol) SendMessage(ct record.ContentType, data []byte) error {
	p.Lock()
	defer p.Unlock()

	if p.state == StateClosed {
		return fmt.Errorf("protocol: SendMessage on closed connection: %w", record.ErrConfiguration)
	}

	if ct == record.ContentTypeApplicationData && p.state != StateActive {
		return fmt.Errorf("protocol: ApplicationData sent before Connect: %w", record.ErrUnexpectedMessage)
	}

	budget, err := p.sendBudget()
	if err != nil {
		return err
	}
	fr := fragment.New(data, budget, ct, p.cfg.Datagram, p.writeEpoch, p.readSeqSnapshot(), p.writeSeqSnapshot())

	for {
		chunk, ok := fr.Next()
		if !ok {
			return nil
		}

		// Each record gets its own fresh sequence snapshot here rather
		// than reusing the one Fragmenter was constructed with: for
		// TLS, ImplicitSeq is the frozen writeSeq on the PlainText
		// itself, so every fragment of a multi-record send needs a
		// distinct snapshot or every AEAD record after the first would
		// reuse the same nonce.
		seq, err := p.nextWriteSeq()
		if err != nil {
			p.state = StateClosed
			p.cleanupLocked()
			p.callbacks.closed(err)
			return err
		}
		payload := make([]byte, len(chunk))
		copy(payload, chunk)
		// seq doubles as both the DTLS explicit sequence number and the
		// TLS implicit write-counter snapshot: nextWriteSeq already
		// returned the exact counter value this record is assigned,
		// for either flavor.
		pt := record.NewPlainText(ct, recordVersion(p.cfg.Datagram), p.cfg.Datagram, record.DirectionWrite,
			p.writeEpoch, seq, p.readSeqSnapshot(), seq, payload)

		if err := p.emitLocked(pt); err != nil {
			return err
		}
	}
}

// emitLocked runs one PlainText through the full outbound pipeline.
// Callers must already hold p.Mutex.
func (p *RecordProtocol) emitLocked(pt *record.PlainText) error {
	compressed := p.writeCompression.Compress(pt)
	cipherText, err := p.writeBulk.Encrypt(compressed, p.writeSP)
	if err != nil {
		return fmt.Errorf("protocol: encrypting outbound record: %w", err)
	}
	wireBytes, err := wire.Serialize(cipherText)
	if err != nil {
		return fmt.Errorf("protocol: serializing outbound record: %w", err)
	}
	p.callbacks.sendToTransport(wireBytes)
	return nil
}

// SendAlert is the C9 send_alert operation: it builds and sends a
// two-byte Alert payload, and if the level is fatal, tears the
// connection down immediately afterward per RFC 5246 §7.2.
func (p *RecordProtocol) SendAlert(level alert.Level, desc alert.Description) error {
	a := alert.New(level, desc)
	err := p.SendMessage(record.ContentTypeAlert, a.Encode())

	if level == alert.LevelFatal {
		p.logger.Warn("sending fatal alert, closing connection", zap.String("description", desc.String()))
		if closeErr := p.CloseDown(a); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// SendHelloVerifyRequest is the C9 send_hello_verify_request
// operation: DTLS's stateless-cookie defense sends this message
// unencrypted at epoch zero regardless of whatever cipher suite may
// already be installed (there is never one yet, since
// HelloVerifyRequest is the very first message a server sends), so it
// bypasses the installed write pipeline entirely and goes straight to
// the null suite, matching wire.ResultUseNullCipher's precondition.
func (p *RecordProtocol) SendHelloVerifyRequest(cookie []byte) error {
	p.Lock()
	defer p.Unlock()

	if !p.cfg.Datagram {
		return fmt.Errorf("protocol: HelloVerifyRequest is DTLS-only: %w", record.ErrConfiguration)
	}

	payload := helloVerifyRequestBody(p.cfg.NegotiatedVersion, cookie)

	// Per RFC 6347 §4.2.1 the cookie-verify exchange is stateless: the
	// write sequence counter is read but never incremented here, so a
	// retransmitted ClientHello gets an identically-sequenced reply.
	seq := p.writeSeqByEpoch[record.EpochClear]

	compressed := record.NewCompressedText(record.ContentTypeHandshake, record.VersionDTLS12, true,
		record.DirectionWrite, record.EpochClear, seq, p.readSeqSnapshot(), p.writeSeqSnapshot(), payload)

	cipherText, err := p.nullBulk.Encrypt(compressed, record.NewNullSecurityParameters(p.cfg.Role))
	if err != nil {
		return fmt.Errorf("protocol: encrypting hello_verify_request: %w", err)
	}
	wireBytes, err := wire.Serialize(cipherText)
	if err != nil {
		return fmt.Errorf("protocol: serializing hello_verify_request: %w", err)
	}
	p.callbacks.sendToTransport(wireBytes)
	return nil
}

const handshakeTypeHelloVerifyRequestMsg = 3

// helloVerifyRequestBody builds a minimal HandshakeHeader-free
// HelloVerifyRequest body: msg type, server_version, and a
// length-prefixed cookie. Full handshake message framing (the
// 4-byte length/message_seq/fragment fields DTLS handshake messages
// carry) is the handshake layer's responsibility; RecordProtocol only
// guarantees this body crosses the wire as a single unfragmented
// Handshake-content record.
func helloVerifyRequestBody(ver record.ProtocolVersion, cookie []byte) []byte {
	out := make([]byte, 0, 4+len(cookie))
	out = append(out, handshakeTypeHelloVerifyRequestMsg, ver.Major, ver.Minor, byte(len(cookie)))
	out = append(out, cookie...)
	return out
}
