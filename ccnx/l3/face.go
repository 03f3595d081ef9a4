// Package l3 defines a message layer face abstraction.
//
// The Transport interface defines a lower layer communication channel.
// It knows the CCNx fixed header for framing, but not message types.
// Package sockettransport offers Transport implementations over stream and datagram sockets.
//
// The Face type is the service exposed to the portal layer.
// It sends and receives messages on a Transport with per-call timeouts.
package l3

import (
	"net"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/logging"
	"github.com/pkg/math"
	"go.uber.org/zap"
)

var logger = logging.New("l3")

// FaceConfig contains options for NewFace.
type FaceConfig struct {
	// RxQueueSize is the number of decoded messages that can wait for Receive.
	// The default is DefaultTransportRxQueueSize.
	RxQueueSize int

	// NotifyOnOpen causes the face to deliver a connection open notification as its first message.
	NotifyOnOpen bool

	// Signer, if not nil, signs outgoing ContentObjects that do not carry a signature.
	Signer ccnx.Signer
}

func (cfg *FaceConfig) applyDefaults() {
	cfg.RxQueueSize = math.MaxInt(cfg.RxQueueSize, DefaultTransportRxQueueSize)
}

// Face sends and receives CCNx messages over a Transport.
type Face struct {
	tr          Transport
	signer      ccnx.Signer
	rx          chan *ccnx.Message
	closing     chan struct{}
	txMutex     sync.RWMutex
	txClosed    bool
	nonBlocking atomic.Bool
	closeOnce   sync.Once
	descOnce    sync.Once
	descriptor  int
}

var lastPseudoDescriptor atomic.Int32

func init() {
	lastPseudoDescriptor.Store(1 << 20)
}

// NewFace creates a Face.
// tr.Rx() and tr.Tx() should not be used after this operation.
func NewFace(tr Transport, cfg FaceConfig) *Face {
	cfg.applyDefaults()
	f := &Face{
		tr:      tr,
		signer:  cfg.Signer,
		rx:      make(chan *ccnx.Message, cfg.RxQueueSize),
		closing: make(chan struct{}),
	}

	if cfg.NotifyOnOpen {
		f.rx <- ccnx.NewConnectionOpenNotification().ToMessage()
	}
	go f.rxLoop()
	return f
}

// Transport returns the underlying transport.
func (f *Face) Transport() Transport {
	return f.tr
}

func (f *Face) rxLoop() {
	defer close(f.rx)
	for wire := range f.tr.Rx() {
		var msg ccnx.Message
		if e := msg.UnmarshalBinary(wire); e != nil {
			logger.Debug("dropping undecodable message", zap.Int("length", len(wire)), zap.Error(e))
			continue
		}

		select {
		case f.rx <- &msg:
		case <-f.closing:
			return
		}
	}
}

// Send transmits a message.
// It blocks until the transport accepts the message or the timeout expires.
// In non-blocking mode, it fails with ErrWouldBlock if the TX queue is full.
func (f *Face) Send(msg *ccnx.Message, timeout Timeout) error {
	if f.signer != nil && msg.IsContentObject() && !msg.ContentObject.IsSigned() {
		co := *msg.ContentObject
		if e := co.Sign(f.signer); e != nil {
			return e
		}
		msg = &ccnx.Message{ContentObject: &co, HopLimit: msg.HopLimit}
	}

	wire, e := msg.MarshalBinary()
	if e != nil {
		return e
	}

	f.txMutex.RLock()
	defer f.txMutex.RUnlock()
	if f.txClosed {
		return ErrClosed
	}

	select {
	case f.tr.Tx() <- wire:
		return nil
	default:
	}
	if timeout == Immediate || f.nonBlocking.Load() {
		return ErrWouldBlock
	}

	expire, stop := timeout.wait()
	defer stop()
	select {
	case f.tr.Tx() <- wire:
		return nil
	case <-f.closing:
		return ErrClosed
	case <-expire:
		return ErrTimeout
	}
}

// Receive retrieves the next message.
// It blocks until a message arrives or the timeout expires, regardless of non-blocking mode.
func (f *Face) Receive(timeout Timeout) (*ccnx.Message, error) {
	select {
	case msg, ok := <-f.rx:
		if !ok {
			return nil, ErrClosed
		}
		return msg, nil
	default:
	}
	if timeout == Immediate {
		return nil, ErrWouldBlock
	}

	expire, stop := timeout.wait()
	defer stop()
	select {
	case msg, ok := <-f.rx:
		if !ok {
			return nil, ErrClosed
		}
		return msg, nil
	case <-f.closing:
		return nil, ErrClosed
	case <-expire:
		return nil, ErrTimeout
	}
}

// SetNonBlocking enables or disables non-blocking send mode.
func (f *Face) SetNonBlocking(enable bool) error {
	f.nonBlocking.Store(enable)
	return nil
}

// IsNonBlocking determines whether non-blocking send mode is enabled.
func (f *Face) IsNonBlocking() bool {
	return f.nonBlocking.Load()
}

// Descriptor returns a file descriptor number identifying this face.
// If the transport is backed by a socket, it is the socket descriptor.
// Otherwise, it is a process-unique number.
func (f *Face) Descriptor() int {
	f.descOnce.Do(func() {
		if fd, ok := socketDescriptor(f.tr); ok {
			f.descriptor = fd
		} else {
			f.descriptor = int(lastPseudoDescriptor.Add(1))
		}
	})
	return f.descriptor
}

func socketDescriptor(tr Transport) (fd int, ok bool) {
	connGetter, ok := tr.(interface{ Conn() net.Conn })
	if !ok {
		return 0, false
	}
	sc, ok := connGetter.Conn().(syscall.Conn)
	if !ok {
		return 0, false
	}
	raw, e := sc.SyscallConn()
	if e != nil {
		return 0, false
	}
	if e = raw.Control(func(s uintptr) { fd = int(s) }); e != nil {
		return 0, false
	}
	return fd, true
}

// Close closes the face and its transport.
// Pending and subsequent Send and Receive calls fail with ErrClosed.
func (f *Face) Close() error {
	f.closeOnce.Do(func() {
		close(f.closing)
		f.txMutex.Lock()
		defer f.txMutex.Unlock()
		f.txClosed = true
		close(f.tr.Tx())
	})
	return nil
}
