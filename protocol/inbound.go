package protocol

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/embeddedtls/recordproto/alert"
	"github.com/embeddedtls/recordproto/bulkcrypto"
	"github.com/embeddedtls/recordproto/compression"
	"github.com/embeddedtls/recordproto/record"
	"github.com/embeddedtls/recordproto/wire"
)

// HandleReceivedDataFromTransport is the C9
// handle_received_data_from_transport operation: it feeds raw
// transport bytes to the Framer, and for every whole record that
// comes out, runs the inbound pipeline described by spec §4.3's
// Validator result switch.
func (p *RecordProtocol) HandleReceivedDataFromTransport(raw []byte) error {
	p.Lock()
	defer p.Unlock()

	if p.state == StateClosed {
		return fmt.Errorf("protocol: data received on closed connection: %w", record.ErrConfiguration)
	}

	p.frame.AddData(raw)

	for {
		wireBytes, ok := p.frame.NextRecord()
		if !ok {
			return nil
		}
		if err := p.handleOneRecordLocked(wireBytes); err != nil {
			return err
		}
		if p.state == StateClosed {
			return nil
		}
	}
}

func (p *RecordProtocol) handleOneRecordLocked(wireBytes []byte) error {
	cipherText, err := wire.Deserialize(wireBytes, p.cfg.Datagram)
	if err != nil {
		p.logger.Warn("malformed record header", zap.Error(err))
		return p.fatalAlertLocked(alert.DescriptionDecodeError, err)
	}

	// The wire layer cannot know the TLS implicit read counter; stamp
	// it in now that RecordProtocol, which does own that counter, has
	// the chance to.
	cipherText = record.NewCipherText(cipherText.ContentType(), cipherText.Version(), p.cfg.Datagram,
		record.DirectionRead, cipherText.Epoch(), cipherText.Seq(), p.tlsReadSeq, 0, cipherText.Payload)

	ctx := wire.Context{
		Datagram:         p.cfg.Datagram,
		ReadEpoch:        p.readEpoch,
		Window:           p.windowByEpoch[cipherText.Epoch()],
		LastEpochZeroSeq: p.lastEpochZeroSeq,
	}

	switch wire.Validate(cipherText, ctx) {
	case wire.ResultOverflow:
		return p.fatalAlertLocked(alert.DescriptionRecordOverflow, record.ErrRecordOverflow)

	case wire.ResultFail:
		return p.fatalAlertLocked(alert.DescriptionDecodeError, record.ErrDeserialize)

	case wire.ResultDrop:
		return nil

	case wire.ResultRetransmit:
		p.callbacks.handshakeData(cipherText.Payload, true)
		return nil

	case wire.ResultUseNullCipher:
		return p.decryptAndDispatchLocked(cipherText, p.nullBulk, p.nullCompression, record.NewNullSecurityParameters(p.cfg.Role))

	case wire.ResultContainsClientHello:
		p.lastEpochZeroSeq = seqPtr(cipherText.Seq())
		return p.decryptAndDispatchLocked(cipherText, p.nullBulk, p.nullCompression, record.NewNullSecurityParameters(p.cfg.Role))

	default: // wire.ResultPassed
		if !p.cfg.Datagram {
			p.tlsReadSeq++
		}
		return p.decryptAndDispatchLocked(cipherText, p.readBulk, p.readCompression, p.readSP)
	}
}

func (p *RecordProtocol) decryptAndDispatchLocked(cipherText *record.CipherText, bulk bulkcrypto.Suite, comp compression.Suite, sp *record.SecurityParameters) error {
	compressed, err := bulk.Decrypt(cipherText, sp)
	if err != nil {
		p.logger.Warn("record decryption failed", zap.Error(err))
		return p.fatalAlertLocked(alert.DescriptionBadRecordMAC, err)
	}

	pt := comp.Decompress(compressed)

	switch wire.PostValidate(pt, p.cfg.NegotiatedVersion) {
	case wire.ResultOverflow:
		return p.fatalAlertLocked(alert.DescriptionRecordOverflow, record.ErrPlaintextOverflow)
	case wire.ResultFail:
		return p.fatalAlertLocked(alert.DescriptionProtocolVersion, record.ErrUnexpectedMessage)
	}

	// Per spec §4.6 inbound step 6, the sliding window only advances
	// once MAC verification (the Decrypt call above) has actually
	// succeeded — never during Validate, which runs before decryption.
	if p.cfg.Datagram {
		if w := p.windowByEpoch[cipherText.Epoch()]; w != nil {
			w.Update(cipherText.Seq())
		}
	}

	return p.dispatchLocked(pt)
}

func (p *RecordProtocol) dispatchLocked(pt *record.PlainText) error {
	switch pt.ContentType() {
	case record.ContentTypeChangeCipherSpec:
		p.callbacks.changeCipherSpec()

	case record.ContentTypeAlert:
		a, err := alert.Decode(pt.Payload)
		if err != nil {
			return p.fatalAlertLocked(alert.DescriptionDecodeError, err)
		}
		p.callbacks.alertReceived(a)
		if a.Level == alert.LevelFatal || a.Description == alert.DescriptionCloseNotify {
			p.state = StateClosed
			p.cleanupLocked()
			p.callbacks.closed(a)
		}

	case record.ContentTypeHandshake:
		p.callbacks.handshakeData(pt.Payload, false)

	case record.ContentTypeApplicationData:
		if p.state != StateActive {
			return p.fatalAlertLocked(alert.DescriptionUnexpectedMessage, record.ErrUnexpectedMessage)
		}
		p.callbacks.applicationData(pt.Payload)
	}
	return nil
}

// fatalAlertLocked sends a fatal alert describing cause, best-effort,
// and tears the connection down. A failure to even send the alert
// (e.g. the write sequence space is already exhausted) does not stop
// the teardown; the peer finding out is best-effort by design, the
// local close is not. Callers must already hold p.Mutex.
func (p *RecordProtocol) fatalAlertLocked(desc alert.Description, cause error) error {
	a := alert.New(alert.LevelFatal, desc)
	if seq, err := p.nextWriteSeq(); err == nil {
		pt := record.NewPlainText(record.ContentTypeAlert, p.cfg.NegotiatedVersion, p.cfg.Datagram,
			record.DirectionWrite, p.writeEpoch, seq, p.readSeqSnapshot(), seq, a.Encode())
		if err := p.emitLocked(pt); err != nil {
			p.logger.Warn("failed to send fatal alert", zap.Error(err))
		}
	}

	p.state = StateClosed
	p.cleanupLocked()
	p.callbacks.closed(fmt.Errorf("%s: %w", desc, cause))
	return cause
}

func seqPtr(seq uint64) *uint64 { return &seq }
