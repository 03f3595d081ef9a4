package transportstack

import (
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/sockettransport"
	"go.uber.org/zap"
)

// Open connects the stack and returns a Face at the API connector.
func (cfg Config) Open() (*l3.Face, error) {
	tr, e := cfg.openForwarder()
	if e != nil {
		return nil, e
	}

	if cfg.Has(ComponentVegas) {
		tr = newVegas(tr, cfg.Vegas)
	}

	var faceCfg l3.FaceConfig
	faceCfg.RxQueueSize = cfg.Socket.RxQueueSize
	faceCfg.NotifyOnOpen = cfg.Has(ComponentAPIConnector)
	if cfg.Has(ComponentTLVCodec) {
		faceCfg.Signer = cfg.Signer
	}
	logger.Debug("stack open",
		zap.Any("components", cfg.Components),
		zap.String("network", cfg.Network),
		zap.String("address", cfg.Address),
	)
	return l3.NewFace(tr, faceCfg), nil
}

func (cfg Config) openForwarder() (l3.Transport, error) {
	if cfg.Network != "" {
		return sockettransport.Dialer{Config: cfg.Socket}.Dial(cfg.Network, "", cfg.Address)
	}

	trA, trB, e := sockettransport.Pipe(cfg.Socket)
	if e != nil {
		return nil, e
	}
	if _, e := l3.GetDefaultForwarder().AddTransport(trB); e != nil {
		close(trA.Tx())
		close(trB.Tx())
		return nil, e
	}
	return trA, nil
}
