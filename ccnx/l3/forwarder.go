package l3

import (
	"math/rand"
	"sync"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"go.uber.org/zap"
)

// AnchorSuffix is the name segment under the router name that receives anchor registrations.
const AnchorSuffix = "anchor"

// ForwarderConfig contains options for NewForwarder.
type ForwarderConfig struct {
	// RouterName is the name of this forwarder.
	// Interests under RouterName/anchor are answered by the forwarder itself.
	// The default is lci:/local/dcr.
	RouterName ccnx.Name

	// Loopback causes messages without a destination to return to the sender.
	Loopback bool
}

func (cfg *ForwarderConfig) applyDefaults() {
	if len(cfg.RouterName) == 0 {
		cfg.RouterName = ccnx.ParseName("lci:/local/dcr")
	}
}

// Forwarder is a logical forwarding plane.
// Its main purpose is to demultiplex messages among local applications, where each application
// is connected through a Transport.
//
// This is a simplified forwarder with several limitations.
//   - A ContentObject is returned along the faces of pending Interests with the exact same name.
//     There is no matching on KeyIdRestriction or ContentObjectHash.
//   - There is no loop prevention and HopLimit is not decremented.
type Forwarder interface {
	// AddTransport adds a Transport to the forwarder.
	// tr.Rx() and tr.Tx() should not be used after this operation.
	AddTransport(tr Transport) (FwFace, error)
}

// NewForwarder creates a Forwarder.
func NewForwarder(cfg ForwarderConfig) Forwarder {
	cfg.applyDefaults()
	fw := &forwarder{
		cfg:    cfg,
		anchor: cfg.RouterName.Append(ccnx.ParseNameSegment(AnchorSuffix)),
		faces:  map[uint32]*fwFace{},
		pit:    map[string]map[uint32]bool{},
		cmd:    make(chan func()),
		rx:     make(chan fwRxMsg),
	}
	go fw.loop()
	return fw
}

type fwRxMsg struct {
	*ccnx.Message
	rxFace *fwFace
}

type forwarder struct {
	cfg    ForwarderConfig
	anchor ccnx.Name
	faces  map[uint32]*fwFace
	pit    map[string]map[uint32]bool
	cmd    chan func()
	rx     chan fwRxMsg
}

func (fw *forwarder) AddTransport(tr Transport) (ff FwFace, e error) {
	f := &fwFace{
		tr:     tr,
		fw:     fw,
		routes: map[string]ccnx.Name{},
	}

	fw.do(func() {
		if len(fw.faces) >= MaxFwFaces {
			e = ErrMaxFwFaces
			return
		}

		for f.id == 0 || fw.faces[f.id] != nil {
			f.id = rand.Uint32()
		}
		fw.faces[f.id] = f
	})

	if e != nil {
		return nil, e
	}
	go f.rxLoop()
	return f, nil
}

func (fw *forwarder) do(fn func()) {
	done := make(chan struct{})
	fw.cmd <- func() {
		defer close(done)
		fn()
	}
	<-done
}

func (fw *forwarder) loop() {
	for {
		select {
		case fn := <-fw.cmd:
			fn()
		case msg := <-fw.rx:
			if fw.faces[msg.rxFace.id] != msg.rxFace {
				continue
			}
			switch {
			case msg.IsControl():
				fw.handleControl(msg)
			case msg.IsInterest():
				fw.forwardInterest(msg)
			case msg.IsContentObject():
				fw.forwardContentObject(msg)
			}
		}
	}
}

func (fw *forwarder) handleControl(msg fwRxMsg) {
	ctrl, f := msg.Control, msg.rxFace
	if ctrl.Kind != ccnx.ControlRequest {
		return
	}

	reply := ccnx.NewAck(ctrl)
	switch ctrl.Op {
	case an.CpiOpFlush:
	case an.CpiOpRegister:
		f.routes[ctrl.Prefix.String()] = ctrl.Prefix
	case an.CpiOpUnregister:
		delete(f.routes, ctrl.Prefix.String())
	default:
		reply = ccnx.NewNack(ctrl)
	}
	logger.Debug("control request", zap.Uint32("face", f.id), zap.Stringer("request", ctrl), zap.Stringer("reply", reply))
	f.send(reply.ToMessage())
}

func (fw *forwarder) forwardInterest(msg fwRxMsg) {
	if fw.anchor.IsPrefixOf(msg.Interest.Name) {
		co := ccnx.NewContentObject(msg.Interest.Name, msg.Interest.Payload)
		msg.rxFace.send(co.ToMessage())
		return
	}

	lpmLen := -1
	var nexthops []*fwFace
	for _, f := range fw.faces {
		if msg.rxFace == f {
			continue
		}

		matchLen := f.lpmRoute(msg.Interest.Name)
		switch {
		case matchLen < 0:
		case matchLen > lpmLen:
			lpmLen = matchLen
			nexthops = []*fwFace{f}
		case matchLen == lpmLen:
			nexthops = append(nexthops, f)
		}
	}

	if len(nexthops) == 0 {
		if fw.cfg.Loopback {
			msg.rxFace.send(msg.Message)
		}
		return
	}

	key := msg.Interest.Name.String()
	downstreams := fw.pit[key]
	if downstreams == nil {
		downstreams = map[uint32]bool{}
		fw.pit[key] = downstreams
	}
	downstreams[msg.rxFace.id] = true

	for _, f := range nexthops {
		f.send(msg.Message)
	}
}

func (fw *forwarder) forwardContentObject(msg fwRxMsg) {
	key := msg.ContentObject.Name.String()
	downstreams := fw.pit[key]
	delete(fw.pit, key)

	sent := false
	for id := range downstreams {
		if f := fw.faces[id]; f != nil {
			f.send(msg.Message)
			sent = true
		}
	}

	if !sent && fw.cfg.Loopback {
		msg.rxFace.send(msg.Message)
	}
}

var (
	defaultForwarder     Forwarder
	defaultForwarderOnce sync.Once
)

// GetDefaultForwarder returns the process-wide Forwarder.
// It operates in loopback mode with the default router name.
func GetDefaultForwarder() Forwarder {
	defaultForwarderOnce.Do(func() {
		defaultForwarder = NewForwarder(ForwarderConfig{Loopback: true})
	})
	return defaultForwarder
}

// DeleteDefaultForwarder deletes the default Forwarder.
// This is non-thread-safe and should only be used in test cases.
func DeleteDefaultForwarder() {
	defaultForwarder = nil
	defaultForwarderOnce = sync.Once{}
}
