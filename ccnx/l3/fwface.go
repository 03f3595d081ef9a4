package l3

import (
	"io"
	"sync"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"go.uber.org/zap"
)

// MaxFwFaces is the maximum number of active FwFaces in a Forwarder.
const MaxFwFaces = 1 << 16

// FwFace represents a transport added to the forwarder.
type FwFace interface {
	io.Closer

	// Transport returns the underlying transport.
	Transport() Transport

	// Routes returns prefixes registered on this face.
	Routes() []ccnx.Name
}

type fwFace struct {
	tr        Transport
	fw        *forwarder
	id        uint32
	routes    map[string]ccnx.Name
	closeOnce sync.Once
}

func (f *fwFace) Transport() Transport {
	return f.tr
}

func (f *fwFace) rxLoop() {
	for wire := range f.tr.Rx() {
		var msg ccnx.Message
		if e := msg.UnmarshalBinary(wire); e != nil {
			logger.Debug("forwarder dropping undecodable message", zap.Uint32("face", f.id), zap.Error(e))
			continue
		}
		f.fw.rx <- fwRxMsg{Message: &msg, rxFace: f}
	}
	f.Close()
}

// send is called from the forwarder loop.
func (f *fwFace) send(msg *ccnx.Message) {
	wire, e := msg.MarshalBinary()
	if e != nil {
		logger.Warn("forwarder cannot encode message", zap.Stringer("msg", msg), zap.Error(e))
		return
	}
	select {
	case f.tr.Tx() <- wire:
	default:
		logger.Debug("forwarder TX queue full", zap.Uint32("face", f.id), zap.Stringer("msg", msg))
	}
}

func (f *fwFace) lpmRoute(name ccnx.Name) int {
	lpmLen := -1
	for _, route := range f.routes {
		if len(route) > lpmLen && route.IsPrefixOf(name) {
			lpmLen = len(route)
		}
	}
	return lpmLen
}

func (f *fwFace) Routes() (list []ccnx.Name) {
	f.fw.do(func() {
		for _, route := range f.routes {
			list = append(list, route)
		}
	})
	return list
}

func (f *fwFace) Close() error {
	f.closeOnce.Do(func() {
		f.fw.do(func() {
			delete(f.fw.faces, f.id)
			for key, downstreams := range f.fw.pit {
				if delete(downstreams, f.id); len(downstreams) == 0 {
					delete(f.fw.pit, key)
				}
			}
			close(f.tr.Tx())
		})
	})
	return nil
}
