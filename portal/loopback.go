package portal

import (
	"sync"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
)

// messageQueue is an unbounded FIFO of messages.
type messageQueue struct {
	mutex sync.Mutex
	items []*ccnx.Message
}

func (q *messageQueue) push(msg *ccnx.Message) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.items = append(q.items, msg)
}

func (q *messageQueue) pop() (msg *ccnx.Message, ok bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	msg, q.items[0] = q.items[0], nil
	q.items = q.items[1:]
	return msg, true
}

func (q *messageQueue) clear() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.items = nil
}

// Loopback is an in-process Backend that returns sent messages to Receive in FIFO order.
// Timeouts are ignored: Receive never blocks.
type Loopback struct {
	queue messageQueue
}

var _ Backend = (*Loopback)(nil)

// NewLoopback creates a Loopback backend.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Start does nothing.
func (*Loopback) Start() error {
	return nil
}

// Stop does nothing.
func (*Loopback) Stop() error {
	return nil
}

// Send appends msg to the queue.
func (lb *Loopback) Send(msg *ccnx.Message, timeout l3.Timeout) error {
	lb.queue.push(msg)
	return nil
}

// Receive removes the oldest message from the queue.
// It returns ErrNoMessage if the queue is empty.
func (lb *Loopback) Receive(timeout l3.Timeout) (*ccnx.Message, error) {
	if msg, ok := lb.queue.pop(); ok {
		return msg, nil
	}
	return nil, ErrNoMessage
}

// Listen does nothing.
func (*Loopback) Listen(name ccnx.Name, timeout l3.Timeout) error {
	return nil
}

// Ignore does nothing.
func (*Loopback) Ignore(name ccnx.Name, timeout l3.Timeout) error {
	return nil
}

// Descriptor returns SentinelDescriptor.
func (*Loopback) Descriptor() int {
	return SentinelDescriptor
}

// SetAttributes returns ErrNotSupported.
func (*Loopback) SetAttributes(attrs Attributes) error {
	return ErrNotSupported
}

// Attributes returns nil.
func (*Loopback) Attributes() *Attributes {
	return nil
}

// Close discards queued messages.
func (lb *Loopback) Close() error {
	lb.queue.clear()
	return nil
}

// LoopBack is a StackImpl that creates a Portal over a Loopback backend.
func LoopBack(factory *Factory, attrs Attributes) (*Portal, error) {
	return New(attrs, NewStack(factory, attrs, NewLoopback()))
}
