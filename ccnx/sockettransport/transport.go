// Package sockettransport implements a transport based on stream or datagram sockets.
package sockettransport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/events"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/logging"
	"github.com/pkg/math"
	"go.uber.org/zap"
)

var logger = logging.New("sockettransport")

// Config contains socket transport configuration.
type Config struct {
	l3.TransportQueueConfig

	// RxBufferLength is the packet buffer length allocated for incoming packets.
	// The default is 65536.
	// Packet larger than this length cannot be received.
	RxBufferLength int

	// RedialBackoffInitial is the initial backoff period during redialing.
	// The default is 100ms.
	RedialBackoffInitial time.Duration

	// RedialBackoffMaximum is the maximum backoff period during redialing.
	// The default is 60s.
	// The minimum is RedialBackoffInitial.
	RedialBackoffMaximum time.Duration
}

func (cfg *Config) applyDefaults() {
	cfg.ApplyTransportQueueConfigDefaults()

	if cfg.RxBufferLength <= 0 {
		cfg.RxBufferLength = 65536
	}
	if cfg.RedialBackoffInitial <= 0 {
		cfg.RedialBackoffInitial = 100 * time.Millisecond
	}
	if cfg.RedialBackoffMaximum <= 0 {
		cfg.RedialBackoffMaximum = 60 * time.Second
	}
	cfg.RedialBackoffMaximum = time.Duration(math.MaxInt64(int64(cfg.RedialBackoffMaximum), int64(cfg.RedialBackoffInitial)))
}

// Counters contains socket transport counters.
type Counters struct {
	// NRedials indicates how many times the socket has been redialed.
	NRedials int `json:"nRedials"`

	// RxQueueLength is the current number of packets in the RX queue.
	RxQueueLength int `json:"rxQueueLength"`

	// TxQueueLength is the current number of packets in the TX queue.
	TxQueueLength int `json:"txQueueLength"`
}

func (cnt Counters) String() string {
	return fmt.Sprintf("%dredials, rx %dqueued, tx %dqueued", cnt.NRedials, cnt.RxQueueLength, cnt.TxQueueLength)
}

// Transport is an l3.Transport that communicates over a socket.
//
// A transport has automatic error handling: if a socket error occurs, the transport automatically
// redials the socket. In case the socket cannot be redialed, the transport remains in "down" status.
// A transport over net.Pipe cannot be redialed, and closes its RX channel on error.
//
// A transport closes itself after its TX channel has been closed.
type Transport interface {
	l3.Transport

	// Conn returns the underlying socket.
	// Caller may gather information from this socket, but should not close or send/receive on it.
	// The socket may be replaced during redialing.
	Conn() net.Conn

	// IsDown returns whether the transport is down (socket is disconnected).
	IsDown() bool

	// OnStateChange registers a callback to be invoked when the transport goes up or down.
	OnStateChange(cb func(isDown bool)) io.Closer

	// Counters returns current counters.
	Counters() Counters
}

type transport struct {
	cfg      Config
	impl     impl
	conn     atomic.Value // net.Conn
	rx       chan []byte
	tx       chan []byte
	nRedials atomic.Int32
	isDown   atomic.Bool
	closing  chan struct{}
	closed   atomic.Bool
	emitter  *events.Emitter
}

// New creates a socket transport.
func New(conn net.Conn, cfg Config) (Transport, error) {
	network := conn.LocalAddr().Network()
	impl, ok := implByNetwork[network]
	if !ok {
		return nil, fmt.Errorf("unknown network %s", network)
	}
	cfg.applyDefaults()

	tr := &transport{
		cfg:     cfg,
		impl:    impl,
		rx:      make(chan []byte, cfg.RxQueueSize),
		tx:      make(chan []byte, cfg.TxQueueSize),
		closing: make(chan struct{}),
		emitter: events.NewEmitter(),
	}

	tr.conn.Store(conn)
	go tr.rxLoop()
	go tr.txLoop()
	return tr, nil
}

func (tr *transport) Rx() <-chan []byte {
	return tr.rx
}

func (tr *transport) Tx() chan<- []byte {
	return tr.tx
}

func (tr *transport) Conn() net.Conn {
	return tr.conn.Load().(net.Conn)
}

func (tr *transport) IsDown() bool {
	return tr.isDown.Load()
}

func (tr *transport) OnStateChange(cb func(isDown bool)) io.Closer {
	return tr.emitter.On(eventStateChange, cb)
}

func (tr *transport) Counters() (cnt Counters) {
	cnt.NRedials = int(tr.nRedials.Load())
	cnt.RxQueueLength = len(tr.rx)
	cnt.TxQueueLength = len(tr.tx)
	return cnt
}

// post passes a received packet to the RX channel.
// Returns false if the transport is closing.
func (tr *transport) post(wire []byte) bool {
	select {
	case tr.rx <- wire:
		return true
	case <-tr.closing:
		return false
	}
}

func (tr *transport) rxLoop() {
	for !tr.closed.Load() {
		e := tr.impl.RxLoop(tr)
		if tr.handleError(e) {
			break
		}
	}
	close(tr.rx)
}

func (tr *transport) txLoop() {
	for wire := range tr.tx {
		if _, e := tr.Conn().Write(wire); e != nil {
			logger.Debug("socket write error", zap.Error(e))
		}
	}
	tr.closed.Store(true)
	close(tr.closing)
	tr.Conn().Close()
}

// handleError redials the socket after an error.
// Returns true if the RX loop should stop.
func (tr *transport) handleError(e error) (stop bool) {
	if tr.closed.Load() {
		return true
	}
	logger.Debug("socket error", zap.Error(e))
	tr.setDown(true)

	backoff := tr.cfg.RedialBackoffInitial
	for !tr.closed.Load() {
		time.Sleep(backoff)
		backoff = time.Duration(math.MinInt64(int64(backoff*2), int64(tr.cfg.RedialBackoffMaximum)))

		conn, e := tr.impl.Redial(tr.Conn())
		if errors.Is(e, errNoRedial) {
			return true
		}
		tr.nRedials.Add(1)
		if e == nil {
			tr.conn.Store(conn)
			if tr.closed.Load() {
				conn.Close()
				return true
			}
			tr.setDown(false)
			return false
		}
		logger.Debug("redial error", zap.Error(e), zap.Duration("backoff", backoff))
	}
	return true
}

func (tr *transport) setDown(isDown bool) {
	tr.isDown.Store(isDown)
	tr.emitter.EmitSync(eventStateChange, isDown)
}

const (
	eventStateChange = "StateChange"
)
