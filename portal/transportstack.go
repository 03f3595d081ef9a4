package portal

import (
	"errors"
	"fmt"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/transportstack"
	"go.uber.org/zap"
)

// ErrNotConnected indicates the transport stack did not report an open connection.
var ErrNotConnected = errors.New("transport stack connection not open")

// Message is a StackImpl that creates a message portal connected to the Metis forwarder.
// The forwarder address is the LocalForwarder factory property.
func Message(factory *Factory, attrs Attributes) (*Portal, error) {
	return openTransportStack(factory, attrs, transportstack.KindMessage, transportstack.ProtocolMetis)
}

// Chunked is a StackImpl that creates a chunked portal with flow control connected to the Metis forwarder.
func Chunked(factory *Factory, attrs Attributes) (*Portal, error) {
	return openTransportStack(factory, attrs, transportstack.KindChunked, transportstack.ProtocolMetis)
}

// TransportLoopBack is a StackImpl that creates a message portal connected to a local forwarder.
// See transportstack.ProtocolLoopback for how the local forwarder is located.
func TransportLoopBack(factory *Factory, attrs Attributes) (*Portal, error) {
	return openTransportStack(factory, attrs, transportstack.KindMessage, transportstack.ProtocolLoopback)
}

func openTransportStack(factory *Factory, attrs Attributes, kind transportstack.Kind, protocol transportstack.Protocol) (*Portal, error) {
	cfg, e := transportstack.Compose(kind, protocol, transportstack.Options{
		LocalForwarder: factory.Property(PropLocalForwarder, DefaultLocalForwarder),
		Signer:         factory.Signer(),
		Vegas: transportstack.VegasConfig{
			InitialWindow: int(factory.PropertyInt(PropVegasInitialWindow, 0)),
			MaxWindow:     int(factory.PropertyInt(PropVegasMaxWindow, 0)),
			RetxTimeout:   factory.PropertyDuration(PropVegasRetxTimeout, 0),
		},
	})
	if e != nil {
		return nil, e
	}

	face, e := cfg.Open()
	if e != nil {
		return nil, fmt.Errorf("transport stack open: %w", e)
	}

	p, e := New(attrs, NewStack(factory, attrs, NewDelegate(face)))
	if e != nil {
		return nil, e
	}

	if e := waitConnectionOpen(p); e != nil {
		p.logger.Warn("transport stack not connected", zap.Stringer("kind", kind), zap.Error(e))
		p.discard()
		return nil, e
	}

	nonBlocking := p.stack.InitialAttributes()
	nonBlocking.NonBlocking = true
	if e := p.SetAttributes(nonBlocking); e != nil {
		p.discard()
		return nil, e
	}
	return p, nil
}

func waitConnectionOpen(p *Portal) error {
	msg, e := p.Receive(l3.Never)
	if e != nil {
		return fmt.Errorf("%w: %w", ErrNotConnected, e)
	}
	if !msg.IsControl() || !msg.Control.IsConnectionOpen() {
		return fmt.Errorf("%w: received %s", ErrNotConnected, msg)
	}
	return nil
}
