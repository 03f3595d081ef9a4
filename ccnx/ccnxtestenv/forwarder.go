package ccnxtestenv

import (
	"sync"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
)

// FakeForwarderConfig contains FakeForwarder behavior.
type FakeForwarderConfig struct {
	// NoiseBeforeAck is the number of unrelated messages sent before each control reply.
	NoiseBeforeAck int

	// NackRequests causes control requests to be negatively acknowledged.
	NackRequests bool

	// IgnoreControl causes control requests to be silently dropped.
	IgnoreControl bool

	// IgnoreAnchor causes anchor Interests to be silently dropped.
	IgnoreAnchor bool

	// RouterName is the local router name.
	// The default is lci:/local/dcr.
	RouterName ccnx.Name
}

// FakeForwarder is a scripted forwarder that records every received message.
// Unlike l3.Forwarder, it serves exactly one transport and never forwards.
type FakeForwarder struct {
	cfg    FakeForwarderConfig
	face   *l3.Face
	anchor ccnx.Name

	mutex    sync.Mutex
	received []*ccnx.Message
	done     chan struct{}
}

// NewFakeForwarder creates a FakeForwarder on a transport.
func NewFakeForwarder(tr l3.Transport, cfg FakeForwarderConfig) *FakeForwarder {
	if len(cfg.RouterName) == 0 {
		cfg.RouterName = ccnx.ParseName("lci:/local/dcr")
	}
	fw := &FakeForwarder{
		cfg:    cfg,
		face:   l3.NewFace(tr, l3.FaceConfig{}),
		anchor: cfg.RouterName.Append(ccnx.ParseNameSegment(l3.AnchorSuffix)),
		done:   make(chan struct{}),
	}
	go fw.loop()
	return fw
}

func (fw *FakeForwarder) loop() {
	defer close(fw.done)
	for {
		msg, e := fw.face.Receive(l3.Never)
		if e != nil {
			return
		}

		fw.mutex.Lock()
		fw.received = append(fw.received, msg)
		fw.mutex.Unlock()

		switch {
		case msg.IsControl():
			fw.handleControl(msg.Control)
		case msg.IsInterest() && fw.anchor.IsPrefixOf(msg.Interest.Name):
			if !fw.cfg.IgnoreAnchor {
				co := ccnx.NewContentObject(msg.Interest.Name, msg.Interest.Payload)
				fw.face.Send(co.ToMessage(), l3.Never)
			}
		}
	}
}

func (fw *FakeForwarder) handleControl(ctrl *ccnx.Control) {
	if ctrl.Kind != ccnx.ControlRequest || fw.cfg.IgnoreControl {
		return
	}

	for i := 0; i < fw.cfg.NoiseBeforeAck; i++ {
		fw.face.Send(ccnx.NewConnectionNotification(an.CpiStatusFlowCtrl).ToMessage(), l3.Never)
		fw.face.Send(ccnx.NewAck(ccnx.NewFlushRequest()).ToMessage(), l3.Never)
	}

	if fw.cfg.NackRequests {
		fw.face.Send(ccnx.NewNack(ctrl).ToMessage(), l3.Never)
	} else {
		fw.face.Send(ccnx.NewAck(ctrl).ToMessage(), l3.Never)
	}
}

// Send delivers a message toward the portal.
func (fw *FakeForwarder) Send(msg *ccnx.Message) error {
	return fw.face.Send(msg, l3.Never)
}

// Received returns a copy of the list of received messages.
func (fw *FakeForwarder) Received() []*ccnx.Message {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	return append([]*ccnx.Message(nil), fw.received...)
}

// Count returns the number of received messages that satisfy a predicate.
func (fw *FakeForwarder) Count(pred func(msg *ccnx.Message) bool) (n int) {
	for _, msg := range fw.Received() {
		if pred(msg) {
			n++
		}
	}
	return n
}

// IsAnchorInterest determines whether msg is an anchor registration Interest.
func (fw *FakeForwarder) IsAnchorInterest(msg *ccnx.Message) bool {
	return msg.IsInterest() && fw.anchor.IsPrefixOf(msg.Interest.Name)
}

// Close stops the forwarder and closes its transport.
func (fw *FakeForwarder) Close() error {
	e := fw.face.Close()
	<-fw.done
	return e
}
