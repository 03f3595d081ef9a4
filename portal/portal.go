// Package portal implements the CCNx Portal, an application session handle that sends and receives
// Interests, ContentObjects, and control messages through an interchangeable backend.
//
// A Factory holds the signing identity and configuration properties.
// A Stack binds one Backend (Loopback, Stub, or Delegate) to a Factory.
// A Portal wraps a Stack, tracks session status, and implements the flush barrier
// and the listen-with-anchor registration.
package portal

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/events"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/logging"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var logger = logging.New("Portal")

// State is the lifecycle state of a Portal.
type State int

// State values.
const (
	StateCreated State = iota
	StateActive
	StateDraining
	StateStopping
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateActive:
		return "Active"
	case StateDraining:
		return "Draining"
	case StateStopping:
		return "Stopping"
	case StateDestroyed:
		return "Destroyed"
	}
	return strconv.Itoa(int(s))
}

// Status is the session status of a Portal.
type Status struct {
	// Error is the errno-style code of the last operation, or zero on success.
	Error int

	// EOF indicates the end of a stream.
	// It is reserved and currently always false.
	EOF bool
}

const eventStateChange = "StateChange"

// Portal is an application session handle.
type Portal struct {
	stack   *Stack
	logger  *zap.Logger
	refcnt  atomic.Int32
	emitter *events.Emitter

	mutex   sync.Mutex
	status  Status
	lastErr error
	state   State
}

// New creates a Portal over a Stack and starts the stack.
// The Portal owns the stack. If the stack cannot start, the stack is closed and no Portal is returned.
func New(attrs Attributes, stack *Stack) (*Portal, error) {
	p := &Portal{
		stack:   stack,
		logger:  logger,
		emitter: events.NewEmitter(),
		state:   StateCreated,
	}
	if attrs.Logging {
		p.logger = logging.Named("Portal")
	}
	p.refcnt.Store(1)

	if e := stack.Start(); e != nil {
		p.logger.Debug("stack start error", zap.Error(e))
		p.setState(StateDestroyed)
		stack.Close()
		return nil, fmt.Errorf("portal start: %w", e)
	}
	p.setState(StateActive)
	p.logger.Debug("portal created", zap.Stringer("attrs", attrs), zap.Int("descriptor", stack.Descriptor()))
	return p, nil
}

func (p *Portal) setState(state State) {
	p.mutex.Lock()
	p.state = state
	p.mutex.Unlock()
	p.emitter.EmitSync(eventStateChange, state)
}

// State returns the lifecycle state.
func (p *Portal) State() State {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.state
}

// OnStateChange registers a callback invoked on every lifecycle state change.
// Returns an io.Closer that cancels the callback registration.
func (p *Portal) OnStateChange(cb func(state State)) io.Closer {
	return p.emitter.On(eventStateChange, cb)
}

func (p *Portal) setError(e error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.lastErr = e
	p.status.Error = ErrorCode(e)
}

func (p *Portal) checkUsable() error {
	switch p.State() {
	case StateStopping, StateDestroyed:
		return ErrClosed
	}
	return nil
}

// Status returns the session status.
func (p *Portal) Status() Status {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.status
}

// IsError determines whether the last operation failed.
func (p *Portal) IsError() bool {
	return p.Status().Error != 0
}

// ErrorCode returns the errno-style code of the last operation.
func (p *Portal) ErrorCode() int {
	return p.Status().Error
}

// LastError returns the error of the last operation.
func (p *Portal) LastError() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.lastErr
}

// IsEOF determines whether the end of stream has been reached.
func (p *Portal) IsEOF() bool {
	return p.Status().EOF
}

// Send transmits a message.
func (p *Portal) Send(msg *ccnx.Message, timeout l3.Timeout) error {
	if e := p.checkUsable(); e != nil {
		return e
	}
	e := p.stack.Send(msg, timeout)
	p.setError(e)
	if e != nil {
		p.logger.Debug("send error", zap.Stringer("msg", msg), zap.Stringer("timeout", timeout), zap.Error(e))
	}
	return e
}

// Receive retrieves the next message.
func (p *Portal) Receive(timeout l3.Timeout) (*ccnx.Message, error) {
	if e := p.checkUsable(); e != nil {
		return nil, e
	}
	msg, e := p.stack.Receive(timeout)
	p.setError(e)
	if e != nil {
		p.logger.Debug("receive error", zap.Stringer("timeout", timeout), zap.Error(e))
		return nil, e
	}
	return msg, nil
}

// Listen asks the backend to deliver Interests under name, then announces an anchor for name
// that expires after ttl.
//
// The anchor announcement is sent to the local router, then exactly one message is received and
// discarded, whether or not the send succeeded.
// Its outcome does not affect the result or the status.
func (p *Portal) Listen(name ccnx.Name, ttl time.Duration, timeout l3.Timeout) error {
	if e := p.checkUsable(); e != nil {
		return e
	}
	if e := p.stack.Listen(name, timeout); e != nil {
		p.setError(e)
		p.logger.Debug("listen error", zap.Stringer("name", name), zap.Error(e))
		return e
	}

	p.announceAnchor(NewAnchor(name, time.Now().Add(ttl).Unix()))
	p.setError(nil)
	return nil
}

func (p *Portal) announceAnchor(anchor Anchor) {
	routerName := ccnx.ParseName(p.stack.Property(PropLocalRouterName, DefaultLocalRouterName))
	timeout := l3.FromDuration(p.stack.PropertyDuration(PropLocalRouterTimeout, DefaultLocalRouterTimeout*time.Microsecond))

	interest := ccnx.NewInterest(routerName.Append(ccnx.ParseNameSegment(l3.AnchorSuffix)), anchor.Serialize())
	sendErr := p.Send(interest.ToMessage(), timeout)
	_, recvErr := p.Receive(timeout)
	p.logger.Debug("anchor announced",
		zap.Stringer("anchor", anchor),
		zap.NamedError("send-err", sendErr),
		zap.NamedError("receive-err", recvErr),
	)
}

// Ignore asks the backend to stop delivering Interests under name.
func (p *Portal) Ignore(name ccnx.Name, timeout l3.Timeout) error {
	if e := p.checkUsable(); e != nil {
		return e
	}
	e := p.stack.Ignore(name, timeout)
	p.setError(e)
	return e
}

// Flush sends a flush request and waits for its positive acknowledgment.
// Messages received before the acknowledgment are discarded, including a NACK of the flush request.
//
// Each Receive waits up to timeout; there is no overall deadline.
// With l3.Never and a backend that neither fails nor acknowledges, Flush blocks forever.
// Any Receive failure ends the flush with that error.
func (p *Portal) Flush(timeout l3.Timeout) error {
	req := ccnx.NewFlushRequest()
	if e := p.Send(req.ToMessage(), l3.Never); e != nil {
		return e
	}

	for nDiscarded := 0; ; nDiscarded++ {
		msg, e := p.Receive(timeout)
		if e != nil {
			p.logger.Debug("flush failed", zap.Uint64("seq", req.Seq), zap.Int("discarded", nDiscarded), zap.Error(e))
			return e
		}
		if msg.IsControl() && msg.Control.IsAck() {
			if seq, _ := msg.Control.AckOriginalSequence(); seq == req.Seq {
				p.logger.Debug("flush complete", zap.Uint64("seq", req.Seq), zap.Int("discarded", nDiscarded))
				return nil
			}
		}
	}
}

// KeyID returns the key identifier of the factory signer.
func (p *Portal) KeyID() []byte {
	return p.stack.KeyID()
}

// Descriptor returns a number identifying the backend communication channel.
func (p *Portal) Descriptor() int {
	return p.stack.Descriptor()
}

// SetAttributes updates backend attributes.
func (p *Portal) SetAttributes(attrs Attributes) error {
	return p.stack.SetAttributes(attrs)
}

// Attributes returns backend attributes, or nil if the backend does not track them.
func (p *Portal) Attributes() *Attributes {
	return p.stack.Attributes()
}

// Acquire adds a reference.
// Each reference must be released with Close.
func (p *Portal) Acquire() *Portal {
	p.refcnt.Add(1)
	return p
}

// Close releases a reference.
// Releasing the last reference flushes the portal with no timeout, stops the backend, and closes the stack.
// A flush failure is logged but not returned.
func (p *Portal) Close() error {
	if n := p.refcnt.Add(-1); n > 0 {
		return nil
	} else if n < 0 {
		return ErrClosed
	}

	p.setState(StateDraining)
	if e := p.Flush(l3.Never); e != nil {
		p.logger.Debug("flush on close failed", zap.Error(e))
	}

	return p.discard()
}

// discard stops the backend and closes the stack without flushing.
func (p *Portal) discard() error {
	p.setState(StateStopping)
	e := multierr.Append(p.stack.Stop(), p.stack.Close())

	p.setState(StateDestroyed)
	return e
}
