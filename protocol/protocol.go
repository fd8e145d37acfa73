// Package protocol implements RecordProtocol, the core that wires
// together framer, fragment, wire, compression, bulkcrypto and
// replaywindow into the send/receive pipelines spec §4 and §6
// describe. It owns all per-connection mutable state: the current
// read/write epoch, sequence counters, installed SecurityParameters,
// and the anti-replay windows.
package protocol

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/embeddedtls/recordproto/alert"
	"github.com/embeddedtls/recordproto/bulkcrypto"
	"github.com/embeddedtls/recordproto/compression"
	"github.com/embeddedtls/recordproto/framer"
	"github.com/embeddedtls/recordproto/internal/rlog"
	"github.com/embeddedtls/recordproto/record"
	"github.com/embeddedtls/recordproto/replaywindow"
)

// RecordProtocol is the C9 component: the only type callers of this
// module construct directly. It is not safe for concurrent use by
// more than one goroutine at a time; the embedded mutex exists as a
// reentrancy trip-wire (a callback that calls back into the same
// RecordProtocol deadlocks loudly instead of corrupting state), the
// same role sync.Mutex plays embedded in the teacher's
// DefaultRecordLayer.
type RecordProtocol struct {
	sync.Mutex

	cfg       Config
	logger    *rlog.Logger
	callbacks Callbacks
	state     State

	frame *framer.Framer

	writeEpoch record.Epoch
	readEpoch  record.Epoch

	writeSeqByEpoch map[record.Epoch]uint64
	windowByEpoch   map[record.Epoch]*replaywindow.Window

	// TLS has no epoch; these are used in place of the
	// writeSeqByEpoch[EpochClear] / per-epoch window when cfg.Datagram
	// is false, since the whole point of an implicit counter is that
	// it is never reset mid-connection the way a new DTLS epoch resets
	// its own counter to zero.
	tlsWriteSeq uint64
	tlsReadSeq  uint64

	writeSP *record.SecurityParameters
	readSP  *record.SecurityParameters

	writeBulk        bulkcrypto.Suite
	readBulk         bulkcrypto.Suite
	writeCompression compression.Suite
	readCompression  compression.Suite

	lastEpochZeroSeq *uint64

	nullBulk        bulkcrypto.Suite
	nullCompression compression.Suite
}

// New constructs a RecordProtocol in StateUninitialized. Call Open
// before sending or receiving anything.
func New(cfg Config, logger *zap.Logger) *RecordProtocol {
	return &RecordProtocol{
		cfg:             cfg,
		logger:          rlog.New(logger),
		state:           StateUninitialized,
		nullBulk:        bulkcrypto.NewNullNull(),
		nullCompression: compression.NewNull(),
	}
}

// Open transitions the connection into StateOpened, registers cb, and
// installs the identity SecurityParameters in both directions — the
// state every TLS connection starts in before a handshake negotiates
// anything, and the state DTLS epoch 0 is in for the life of the
// connection.
func (p *RecordProtocol) Open(cb Callbacks) error {
	p.Lock()
	defer p.Unlock()

	if p.state != StateUninitialized {
		return fmt.Errorf("protocol: Open called in state %s: %w", p.state, record.ErrConfiguration)
	}

	p.callbacks = cb
	if p.cfg.Datagram {
		p.frame = framer.NewDTLS()
	} else {
		p.frame = framer.NewTLS()
	}

	p.writeSeqByEpoch = map[record.Epoch]uint64{record.EpochClear: 0}
	p.windowByEpoch = map[record.Epoch]*replaywindow.Window{record.EpochClear: replaywindow.New()}
	p.writeEpoch = record.EpochClear
	p.readEpoch = record.EpochClear

	p.writeSP = record.NewNullSecurityParameters(p.cfg.Role)
	p.readSP = record.NewNullSecurityParameters(p.cfg.Role)
	p.writeBulk = p.nullBulk
	p.readBulk = p.nullBulk
	p.writeCompression = p.nullCompression
	p.readCompression = p.nullCompression

	p.state = StateOpened
	p.logger.Info("record protocol opened", zap.Bool("datagram", p.cfg.Datagram), zap.String("role", p.cfg.Role.String()))
	return nil
}

// Connect is the C9 connect operation: it transitions Opened -> Active,
// after which ApplicationData records are allowed through both the
// outbound and inbound pipelines. Calling Connect before Open, or
// after the connection has been closed, is a configuration error.
func (p *RecordProtocol) Connect() error {
	p.Lock()
	defer p.Unlock()

	if p.state != StateOpened && p.state != StateActive {
		return fmt.Errorf("protocol: Connect called in state %s: %w", p.state, record.ErrConfiguration)
	}
	p.state = StateActive
	p.logger.Info("record protocol connected")
	return nil
}

// Disconnect is the C9 disconnect operation: it transitions Active ->
// Opened, after which ApplicationData is rejected again the same way
// it is before the first Connect. It does not touch the transport,
// does not send anything, and does not reset keys or sequence state;
// use Shutdown for a graceful close_notify teardown, or CloseDown for
// an immediate local close.
func (p *RecordProtocol) Disconnect() error {
	p.Lock()
	defer p.Unlock()

	if p.state != StateActive && p.state != StateOpened {
		return fmt.Errorf("protocol: Disconnect called in state %s: %w", p.state, record.ErrConfiguration)
	}
	p.state = StateOpened
	p.logger.Info("record protocol disconnected")
	return nil
}

// Shutdown sends a close_notify warning alert and tears the
// connection down, the graceful-shutdown path RFC 5246 §7.2.1
// describes. Unlike Disconnect, this is a full, unrecoverable close.
func (p *RecordProtocol) Shutdown() error {
	if err := p.SendAlert(alert.LevelWarning, alert.DescriptionCloseNotify); err != nil {
		p.logger.Warn("failed to send close_notify", zap.Error(err))
	}
	return p.CloseDown(nil)
}

// Connected reports whether the connection is in StateActive, i.e.
// whether ApplicationData is currently permitted.
func (p *RecordProtocol) Connected() bool {
	p.Lock()
	defer p.Unlock()
	return p.state == StateActive
}

// CloseDown tears the connection down immediately, without attempting
// to notify the peer. reason is forwarded to Callbacks.OnClose; a nil
// reason means an orderly, locally-initiated close.
func (p *RecordProtocol) CloseDown(reason error) error {
	p.Lock()
	defer p.Unlock()

	if p.state == StateClosed {
		return nil
	}
	p.state = StateClosed
	p.cleanupLocked()
	p.callbacks.closed(reason)
	return nil
}

// Cleanup releases buffered transport bytes without changing
// connection state, used when a long-lived idle connection wants to
// shed memory without actually closing.
func (p *RecordProtocol) Cleanup() {
	p.Lock()
	defer p.Unlock()
	p.cleanupLocked()
}

func (p *RecordProtocol) cleanupLocked() {
	if p.frame != nil {
		if p.cfg.Datagram {
			p.frame = framer.NewDTLS()
		} else {
			p.frame = framer.NewTLS()
		}
	}
}

// State reports the connection's current lifecycle state.
func (p *RecordProtocol) State() State {
	p.Lock()
	defer p.Unlock()
	return p.state
}
