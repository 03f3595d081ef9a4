package portal

import (
	"errors"
	"sync"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
)

// StubConfig contains Stub options.
type StubConfig struct {
	// StartError, if not nil, is returned by Start.
	StartError error
}

// Stub is an in-process Backend with Loopback message semantics that also records the calls it receives.
type Stub struct {
	cfg   StubConfig
	queue messageQueue

	mutex    sync.Mutex
	nStart   int
	nStop    int
	nClose   int
	listened []ccnx.Name
	ignored  []ccnx.Name
}

var _ Backend = (*Stub)(nil)

// NewStub creates a Stub backend.
func NewStub(cfg StubConfig) *Stub {
	return &Stub{cfg: cfg}
}

// Start records the call and returns cfg.StartError.
func (st *Stub) Start() error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.nStart++
	return st.cfg.StartError
}

// Stop records the call.
func (st *Stub) Stop() error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.nStop++
	return nil
}

// Send appends msg to the queue.
func (st *Stub) Send(msg *ccnx.Message, timeout l3.Timeout) error {
	st.queue.push(msg)
	return nil
}

// Receive removes the oldest message from the queue, or returns ErrNoMessage.
func (st *Stub) Receive(timeout l3.Timeout) (*ccnx.Message, error) {
	if msg, ok := st.queue.pop(); ok {
		return msg, nil
	}
	return nil, ErrNoMessage
}

// Listen records the name.
func (st *Stub) Listen(name ccnx.Name, timeout l3.Timeout) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.listened = append(st.listened, name.Copy())
	return nil
}

// Ignore records the name.
func (st *Stub) Ignore(name ccnx.Name, timeout l3.Timeout) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.ignored = append(st.ignored, name.Copy())
	return nil
}

// Descriptor returns SentinelDescriptor.
func (*Stub) Descriptor() int {
	return SentinelDescriptor
}

// SetAttributes returns ErrNotSupported.
func (*Stub) SetAttributes(attrs Attributes) error {
	return ErrNotSupported
}

// Attributes returns nil.
func (*Stub) Attributes() *Attributes {
	return nil
}

// Close records the call and discards queued messages.
func (st *Stub) Close() error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.nClose++
	st.queue.clear()
	return nil
}

// StubCounters contains call counts and recorded names of a Stub.
type StubCounters struct {
	NStart   int
	NStop    int
	NClose   int
	Listened []ccnx.Name
	Ignored  []ccnx.Name
}

// Counters returns call counts and recorded names.
func (st *Stub) Counters() (cnt StubCounters) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	return StubCounters{
		NStart:   st.nStart,
		NStop:    st.nStop,
		NClose:   st.nClose,
		Listened: append([]ccnx.Name(nil), st.listened...),
		Ignored:  append([]ccnx.Name(nil), st.ignored...),
	}
}

// ErrStubStart is a Start failure usable in StubConfig.
var ErrStubStart = errors.New("stub start failure")
