package portal

import (
	"fmt"
	"sync"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"go.uber.org/zap"
)

// ExternalTransport is a message-level transport owned by a Delegate.
// *l3.Face satisfies this interface.
type ExternalTransport interface {
	Send(msg *ccnx.Message, timeout l3.Timeout) error
	Receive(timeout l3.Timeout) (*ccnx.Message, error)
	SetNonBlocking(enable bool) error
	IsNonBlocking() bool
	Descriptor() int
	Close() error
}

var _ ExternalTransport = (*l3.Face)(nil)

// Delegate is a Backend that forwards every operation to an ExternalTransport.
type Delegate struct {
	tr ExternalTransport

	mutex sync.Mutex
	attrs Attributes
}

var _ Backend = (*Delegate)(nil)

// NewDelegate creates a Delegate backend.
// The Delegate owns tr and closes it in Close.
func NewDelegate(tr ExternalTransport) *Delegate {
	return &Delegate{
		tr:    tr,
		attrs: Attributes{NonBlocking: tr.IsNonBlocking()},
	}
}

// Transport returns the underlying transport.
func (d *Delegate) Transport() ExternalTransport {
	return d.tr
}

// Start does nothing.
func (*Delegate) Start() error {
	return nil
}

// Stop does nothing.
func (*Delegate) Stop() error {
	return nil
}

// Send forwards to the transport.
func (d *Delegate) Send(msg *ccnx.Message, timeout l3.Timeout) error {
	return d.tr.Send(msg, timeout)
}

// Receive forwards to the transport.
func (d *Delegate) Receive(timeout l3.Timeout) (*ccnx.Message, error) {
	return d.tr.Receive(timeout)
}

// Listen asks the forwarder to route name toward this connection.
func (d *Delegate) Listen(name ccnx.Name, timeout l3.Timeout) error {
	return d.routeRequest(ccnx.NewAddRouteToSelfRequest(name), timeout)
}

// Ignore asks the forwarder to stop routing name toward this connection.
func (d *Delegate) Ignore(name ccnx.Name, timeout l3.Timeout) error {
	return d.routeRequest(ccnx.NewRemoveRouteToSelfRequest(name), timeout)
}

// routeRequest sends a route request and consumes exactly one message as its response.
// Any control message counts as the response; its content is not inspected.
func (d *Delegate) routeRequest(req *ccnx.Control, timeout l3.Timeout) error {
	if e := d.tr.Send(req.ToMessage(), l3.Never); e != nil {
		return e
	}

	msg, e := d.tr.Receive(timeout)
	if e != nil {
		return e
	}
	if !msg.IsControl() {
		logger.Debug("route request answered with non-control message",
			zap.Stringer("req", req),
			zap.Stringer("msg", msg),
		)
		return fmt.Errorf("%s %s: %w", req.Op, req.Prefix, ErrNoControlResponse)
	}
	return nil
}

// Descriptor returns the transport descriptor.
func (d *Delegate) Descriptor() int {
	return d.tr.Descriptor()
}

// SetAttributes applies non-blocking mode to the transport.
func (d *Delegate) SetAttributes(attrs Attributes) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if e := d.tr.SetNonBlocking(attrs.NonBlocking); e != nil {
		return e
	}
	d.attrs = attrs
	return nil
}

// Attributes returns current attributes.
func (d *Delegate) Attributes() *Attributes {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	attrs := d.attrs
	return &attrs
}

// Close closes the transport.
func (d *Delegate) Close() error {
	return d.tr.Close()
}
