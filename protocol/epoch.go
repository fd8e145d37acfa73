package protocol

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/embeddedtls/recordproto/ciphersuite"
	"github.com/embeddedtls/recordproto/compression"
	"github.com/embeddedtls/recordproto/record"
	"github.com/embeddedtls/recordproto/replaywindow"
)

// nextWriteSeq returns the sequence number the next outbound record
// in the current write epoch must carry, and advances the counter.
// It enforces the saturating ceiling spec §9's DESIGN NOTES call for:
// the connection must be closed before either counter space wraps,
// never silently wrap it.
func (p *RecordProtocol) nextWriteSeq() (uint64, error) {
	if !p.cfg.Datagram {
		if p.tlsWriteSeq >= record.MaxTLSSequence {
			return 0, fmt.Errorf("protocol: write sequence exhausted: %w: %w", record.ErrSequenceExhausted, record.ErrConfiguration)
		}
		seq := p.tlsWriteSeq
		p.tlsWriteSeq++
		return seq, nil
	}

	seq := p.writeSeqByEpoch[p.writeEpoch]
	if seq >= record.MaxDTLSSequence {
		return 0, fmt.Errorf("protocol: write sequence exhausted for epoch %d: %w: %w", p.writeEpoch, record.ErrSequenceExhausted, record.ErrConfiguration)
	}
	p.writeSeqByEpoch[p.writeEpoch] = seq + 1
	return seq, nil
}

// writeSeqSnapshot and readSeqSnapshot return the TLS implicit
// counters as they currently stand, for tagging PlainText objects
// built outside the normal per-record increment path (e.g. the
// fragmenter, which freezes a snapshot once per send_message call).
func (p *RecordProtocol) writeSeqSnapshot() uint64 { return p.tlsWriteSeq }
func (p *RecordProtocol) readSeqSnapshot() uint64  { return p.tlsReadSeq }

// IncreaseEpoch advances dir's epoch by one, installing a fresh
// sequence counter (and, for the read side, a fresh anti-replay
// window) at zero. DTLS only: spec §3 epochs do not exist for TLS.
func (p *RecordProtocol) IncreaseEpoch(dir record.Direction) (record.Epoch, error) {
	p.Lock()
	defer p.Unlock()
	if !p.cfg.Datagram {
		return 0, fmt.Errorf("protocol: epochs do not exist for TLS: %w", record.ErrConfiguration)
	}

	if dir == record.DirectionWrite {
		p.writeEpoch++
		p.writeSeqByEpoch[p.writeEpoch] = 0
		return p.writeEpoch, nil
	}

	p.readEpoch++
	p.windowByEpoch[p.readEpoch] = replaywindow.New()
	return p.readEpoch, nil
}

// DecreaseEpoch rolls dir's epoch back by one, used when a DTLS flight
// must restart from epoch 0 (e.g. a cookie-exchange retry after
// HelloVerifyRequest). It refuses to go below EpochClear.
func (p *RecordProtocol) DecreaseEpoch(dir record.Direction) (record.Epoch, error) {
	p.Lock()
	defer p.Unlock()
	if !p.cfg.Datagram {
		return 0, fmt.Errorf("protocol: epochs do not exist for TLS: %w", record.ErrConfiguration)
	}

	if dir == record.DirectionWrite {
		if p.writeEpoch == record.EpochClear {
			return 0, fmt.Errorf("protocol: write epoch already at zero: %w", record.ErrConfiguration)
		}
		p.writeEpoch--
		return p.writeEpoch, nil
	}

	if p.readEpoch == record.EpochClear {
		return 0, fmt.Errorf("protocol: read epoch already at zero: %w", record.ErrConfiguration)
	}
	p.readEpoch--
	return p.readEpoch, nil
}

// SetWriteSecurityParameters installs sp/bulk/comp as the active write
// pipeline for the current write epoch. Called by the handshake layer
// once key derivation completes, typically just before sending
// ChangeCipherSpec.
func (p *RecordProtocol) SetWriteSecurityParameters(sp *record.SecurityParameters, bulk ciphersuite.BulkEncryption, comp compression.Suite) error {
	p.Lock()
	defer p.Unlock()

	if err := bulk.InitEncryptor(sp); err != nil {
		return fmt.Errorf("protocol: initializing write cipher: %w", err)
	}
	p.writeSP = sp
	p.writeBulk = bulk
	p.writeCompression = comp
	p.logger.Info("write security parameters installed", zap.Uint16("suite", uint16(sp.CipherSuiteID)), zap.Uint16("epoch", uint16(p.writeEpoch)))
	return nil
}

// SetReadSecurityParameters installs sp/bulk/comp as the active read
// pipeline for the current read epoch.
func (p *RecordProtocol) SetReadSecurityParameters(sp *record.SecurityParameters, bulk ciphersuite.BulkEncryption, comp compression.Suite) error {
	p.Lock()
	defer p.Unlock()

	if err := bulk.InitDecryptor(sp); err != nil {
		return fmt.Errorf("protocol: initializing read cipher: %w", err)
	}
	p.readSP = sp
	p.readBulk = bulk
	p.readCompression = comp
	p.logger.Info("read security parameters installed", zap.Uint16("suite", uint16(sp.CipherSuiteID)), zap.Uint16("epoch", uint16(p.readEpoch)))
	return nil
}

// ResetSecurityParameters reinstalls the identity cipher suite in both
// directions and rewinds both epochs to zero, used when a handshake
// attempt is abandoned and the connection falls back to its initial
// state rather than closing outright.
func (p *RecordProtocol) ResetSecurityParameters() {
	p.Lock()
	defer p.Unlock()

	p.writeEpoch = record.EpochClear
	p.readEpoch = record.EpochClear
	p.writeSeqByEpoch = map[record.Epoch]uint64{record.EpochClear: 0}
	p.windowByEpoch = map[record.Epoch]*replaywindow.Window{record.EpochClear: replaywindow.New()}
	p.tlsWriteSeq = 0
	p.tlsReadSeq = 0

	p.writeSP = record.NewNullSecurityParameters(p.cfg.Role)
	p.readSP = record.NewNullSecurityParameters(p.cfg.Role)
	p.writeBulk = p.nullBulk
	p.readBulk = p.nullBulk
	p.writeCompression = p.nullCompression
	p.readCompression = p.nullCompression
}

// OnCipherSuiteSelected resolves id to its full KeyExchange,
// Authentication and BulkEncryption trio via the ciphersuite package.
// The handshake layer installs the BulkEncryption half through
// Set{Read,Write}SecurityParameters once derived keys are available;
// RecordProtocol itself never negotiates, it only instantiates what
// was negotiated elsewhere.
func (p *RecordProtocol) OnCipherSuiteSelected(id record.CipherSuiteID) (*ciphersuite.CipherSuite, error) {
	return ciphersuite.Make(id)
}

// UseMostRecentClientHelloSequenceNumber records seq as the sequence
// number of the most recent ClientHello accepted at epoch zero, so a
// later retransmission of the same flight is recognized by
// wire.Validate's ResultRetransmit path rather than reprocessed.
func (p *RecordProtocol) UseMostRecentClientHelloSequenceNumber(seq uint64) {
	p.Lock()
	defer p.Unlock()
	p.lastEpochZeroSeq = &seq
}
