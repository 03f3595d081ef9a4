package transportstack

import (
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/pkg/math"
	"go.uber.org/zap"
)

// VegasConfig contains flow controller configuration.
type VegasConfig struct {
	// InitialWindow is the initial number of outstanding chunk Interests.
	// The default is 2.
	InitialWindow int

	// MaxWindow is the maximum number of outstanding chunk Interests.
	// The default is 32.
	// The minimum is InitialWindow.
	MaxWindow int

	// RetxTimeout is the duration after which an unanswered chunk Interest is retransmitted.
	// The default is 1s.
	RetxTimeout time.Duration
}

func (cfg *VegasConfig) applyDefaults() {
	if cfg.InitialWindow <= 0 {
		cfg.InitialWindow = 2
	}
	if cfg.MaxWindow <= 0 {
		cfg.MaxWindow = 32
	}
	cfg.MaxWindow = math.MaxInt(cfg.MaxWindow, cfg.InitialWindow)
	if cfg.RetxTimeout <= 0 {
		cfg.RetxTimeout = time.Second
	}
}

// vegas is a flow controller between the API connector and the codec.
// An outgoing Interest without payload whose name does not end with a chunk segment starts a segmented retrieval:
// the controller expresses Interests for successive chunks within a congestion window,
// and delivers ContentObjects to the portal in chunk order until the end chunk.
// Other messages pass through unchanged.
type vegas struct {
	cfg   VegasConfig
	lower l3.Transport
	rx    chan []byte
	tx    chan []byte
	flows map[string]*vegasFlow
}

type vegasFlow struct {
	base      ccnx.Name
	keyID     []byte
	cwnd      int
	next      uint64 // next chunk number to request
	deliver   uint64 // next chunk number to deliver
	end       uint64
	hasEnd    bool
	inflight  map[uint64]time.Time
	reordered map[uint64][]byte
}

func newVegas(lower l3.Transport, cfg VegasConfig) l3.Transport {
	cfg.applyDefaults()
	v := &vegas{
		cfg:   cfg,
		lower: lower,
		rx:    make(chan []byte, l3.DefaultTransportRxQueueSize),
		tx:    make(chan []byte, l3.DefaultTransportTxQueueSize),
		flows: map[string]*vegasFlow{},
	}
	go v.loop()
	return v
}

func (v *vegas) Rx() <-chan []byte {
	return v.rx
}

func (v *vegas) Tx() chan<- []byte {
	return v.tx
}

func (v *vegas) loop() {
	defer close(v.rx)
	ticker := time.NewTicker(v.cfg.RetxTimeout / 4)
	defer ticker.Stop()

	tx := v.tx
	for {
		select {
		case wire, ok := <-tx:
			if !ok {
				close(v.lower.Tx())
				tx = nil
				continue
			}
			v.handleTx(wire)
		case wire, ok := <-v.lower.Rx():
			if !ok {
				if tx != nil {
					close(v.lower.Tx())
				}
				return
			}
			v.handleRx(wire)
		case now := <-ticker.C:
			v.retransmit(now)
		}
	}
}

func (v *vegas) handleTx(wire []byte) {
	var msg ccnx.Message
	if e := msg.UnmarshalBinary(wire); e != nil || !msg.IsInterest() {
		v.lower.Tx() <- wire
		return
	}
	if _, isChunk := msg.Interest.Name.Chunk(); isChunk || len(msg.Interest.Payload) > 0 {
		v.lower.Tx() <- wire
		return
	}

	key := msg.Interest.Name.String()
	if v.flows[key] != nil {
		return
	}
	flow := &vegasFlow{
		base:      msg.Interest.Name,
		keyID:     msg.Interest.KeyIDRestriction,
		cwnd:      v.cfg.InitialWindow,
		inflight:  map[uint64]time.Time{},
		reordered: map[uint64][]byte{},
	}
	v.flows[key] = flow
	v.fill(flow)
}

func (v *vegas) express(flow *vegasFlow, chunk uint64) {
	interest := ccnx.NewInterest(flow.base.WithChunk(chunk), nil)
	interest.KeyIDRestriction = flow.keyID
	wire, e := interest.ToMessage().MarshalBinary()
	if e != nil {
		logger.Warn("vegas cannot encode Interest", zap.Error(e))
		return
	}
	flow.inflight[chunk] = time.Now()
	v.lower.Tx() <- wire
}

func (v *vegas) fill(flow *vegasFlow) {
	for len(flow.inflight) < flow.cwnd && !(flow.hasEnd && flow.next > flow.end) {
		v.express(flow, flow.next)
		flow.next++
	}
}

func (v *vegas) handleRx(wire []byte) {
	var msg ccnx.Message
	if e := msg.UnmarshalBinary(wire); e != nil || !msg.IsContentObject() {
		v.rx <- wire
		return
	}
	chunk, isChunk := msg.ContentObject.Name.Chunk()
	if !isChunk {
		v.rx <- wire
		return
	}
	key := msg.ContentObject.Name.GetPrefix(-1).String()
	flow := v.flows[key]
	if flow == nil {
		v.rx <- wire
		return
	}
	if _, ok := flow.inflight[chunk]; !ok {
		return
	}

	delete(flow.inflight, chunk)
	flow.cwnd = math.MinInt(flow.cwnd+1, v.cfg.MaxWindow)
	if msg.ContentObject.HasEndChunk {
		flow.end, flow.hasEnd = msg.ContentObject.EndChunk, true
		for n := range flow.inflight {
			if n > flow.end {
				delete(flow.inflight, n)
			}
		}
	}
	flow.reordered[chunk] = wire

	for {
		w, ok := flow.reordered[flow.deliver]
		if !ok {
			break
		}
		delete(flow.reordered, flow.deliver)
		v.rx <- w
		flow.deliver++
	}

	if flow.hasEnd && flow.deliver > flow.end {
		delete(v.flows, key)
		return
	}
	v.fill(flow)
}

func (v *vegas) retransmit(now time.Time) {
	for _, flow := range v.flows {
		for chunk, sent := range flow.inflight {
			if now.Sub(sent) < v.cfg.RetxTimeout {
				continue
			}
			flow.cwnd = math.MaxInt(flow.cwnd/2, 1)
			logger.Debug("vegas retransmit", zap.Stringer("name", flow.base), zap.Uint64("chunk", chunk), zap.Int("cwnd", flow.cwnd))
			v.express(flow, chunk)
		}
	}
}
