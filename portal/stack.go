package portal

import (
	"sync"
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
)

// Stack binds a Backend to a Factory and dispatches portal operations to the backend.
type Stack struct {
	factory *Factory
	attrs   Attributes
	backend Backend

	errMutex sync.Mutex
	lastErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewStack creates a Stack.
// It acquires a reference on factory, which is released in Close.
func NewStack(factory *Factory, attrs Attributes, backend Backend) *Stack {
	return &Stack{
		factory: factory.Acquire(),
		attrs:   attrs,
		backend: backend,
	}
}

// Factory returns the factory.
func (stack *Stack) Factory() *Factory {
	return stack.factory
}

// Backend returns the backend.
func (stack *Stack) Backend() Backend {
	return stack.backend
}

func (stack *Stack) record(e error) error {
	stack.errMutex.Lock()
	defer stack.errMutex.Unlock()
	stack.lastErr = e
	return e
}

// Error returns the error from the most recent dispatched operation.
func (stack *Stack) Error() error {
	stack.errMutex.Lock()
	defer stack.errMutex.Unlock()
	return stack.lastErr
}

// ErrorCode returns the errno-style code of the most recent dispatched operation.
func (stack *Stack) ErrorCode() int {
	return ErrorCode(stack.Error())
}

// Start starts the backend.
func (stack *Stack) Start() error {
	return stack.record(stack.backend.Start())
}

// Stop stops the backend.
func (stack *Stack) Stop() error {
	return stack.record(stack.backend.Stop())
}

// Send sends a message.
func (stack *Stack) Send(msg *ccnx.Message, timeout l3.Timeout) error {
	return stack.record(stack.backend.Send(msg, timeout))
}

// Receive receives a message.
func (stack *Stack) Receive(timeout l3.Timeout) (*ccnx.Message, error) {
	msg, e := stack.backend.Receive(timeout)
	return msg, stack.record(e)
}

// Listen asks the backend to deliver Interests under name.
func (stack *Stack) Listen(name ccnx.Name, timeout l3.Timeout) error {
	return stack.record(stack.backend.Listen(name, timeout))
}

// Ignore asks the backend to stop delivering Interests under name.
func (stack *Stack) Ignore(name ccnx.Name, timeout l3.Timeout) error {
	return stack.record(stack.backend.Ignore(name, timeout))
}

// Descriptor returns the backend descriptor.
func (stack *Stack) Descriptor() int {
	return stack.backend.Descriptor()
}

// SetAttributes updates backend attributes.
func (stack *Stack) SetAttributes(attrs Attributes) error {
	return stack.record(stack.backend.SetAttributes(attrs))
}

// InitialAttributes returns the attributes given when the Stack was created.
// They do not follow later SetAttributes calls.
func (stack *Stack) InitialAttributes() Attributes {
	return stack.attrs
}

// Attributes returns backend attributes, or nil if the backend does not track them.
func (stack *Stack) Attributes() *Attributes {
	return stack.backend.Attributes()
}

// KeyID returns the factory key identifier.
func (stack *Stack) KeyID() []byte {
	return stack.factory.KeyID()
}

// Property returns a factory property.
func (stack *Stack) Property(name, def string) string {
	return stack.factory.Property(name, def)
}

// PropertyInt returns a factory property as integer.
func (stack *Stack) PropertyInt(name string, def int64) int64 {
	return stack.factory.PropertyInt(name, def)
}

// PropertyDuration returns a factory property as duration.
func (stack *Stack) PropertyDuration(name string, def time.Duration) time.Duration {
	return stack.factory.PropertyDuration(name, def)
}

// Close releases the factory reference and closes the backend.
// Subsequent calls return the same result without side effects.
func (stack *Stack) Close() error {
	stack.closeOnce.Do(func() {
		stack.factory.Release()
		stack.closeErr = stack.backend.Close()
	})
	return stack.closeErr
}
