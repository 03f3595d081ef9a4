package portal

import (
	"io"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
)

// Backend is the communication strategy bound to a Stack.
//
// Implementations return errors that wrap unix.Errno where possible, so that
// the portal status carries a meaningful code.
type Backend interface {
	io.Closer

	Start() error
	Stop() error

	Send(msg *ccnx.Message, timeout l3.Timeout) error
	Receive(timeout l3.Timeout) (*ccnx.Message, error)

	Listen(name ccnx.Name, timeout l3.Timeout) error
	Ignore(name ccnx.Name, timeout l3.Timeout) error

	// Descriptor returns a number identifying the underlying communication channel.
	Descriptor() int

	SetAttributes(attrs Attributes) error
	// Attributes returns current attributes, or nil if the backend does not track them.
	Attributes() *Attributes
}

// SentinelDescriptor is the Descriptor of in-process backends.
const SentinelDescriptor = 3
