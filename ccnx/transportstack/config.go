// Package transportstack assembles transport stacks from named components.
//
// A stack is an ordered list of components: an API connector facing the portal,
// an optional flow controller, the TLV codec, and a forwarder connector.
package transportstack

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/sockettransport"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/logging"
	"go.uber.org/zap"
)

var logger = logging.New("transportstack")

// Environment variables.
const (
	// EnvBentPipeName names the unix socket of a local forwarder.
	EnvBentPipeName = "BENT_PIPE_NAME"
	// EnvMetisPort overrides the TCP port of the Metis forwarder.
	EnvMetisPort = "METIS_PORT"
)

// DefaultMetisPort is the default TCP port of the Metis forwarder.
const DefaultMetisPort = 9695

// Component is a named stack component.
type Component string

// Component names.
const (
	ComponentAPIConnector   Component = "API_CONNECTOR"
	ComponentVegas          Component = "FC_VEGAS"
	ComponentTLVCodec       Component = "TLV_CODEC"
	ComponentLocalForwarder Component = "FWD_LOCAL"
	ComponentMetisForwarder Component = "FWD_METIS"
)

// Kind is the kind of portal served by the stack.
type Kind int

// Kind values.
const (
	KindMessage Kind = iota
	KindChunked
)

func (kind Kind) String() string {
	switch kind {
	case KindMessage:
		return "message"
	case KindChunked:
		return "chunked"
	}
	return strconv.Itoa(int(kind))
}

// Protocol selects the forwarder connector.
type Protocol int

// Protocol values.
const (
	// ProtocolLoopback connects to a local forwarder: the unix socket named in BENT_PIPE_NAME if set,
	// otherwise the in-process loopback forwarder.
	ProtocolLoopback Protocol = iota
	// ProtocolMetis connects to the Metis forwarder.
	ProtocolMetis
)

// Options contains inputs to Compose.
type Options struct {
	// LocalForwarder is the URI of the Metis forwarder, such as tcp://127.0.0.1:9695.
	// METIS_PORT environment variable overrides its port.
	LocalForwarder string

	// Signer is the codec signer for outgoing ContentObjects.
	Signer ccnx.Signer

	// Vegas configures the flow controller of chunked stacks.
	Vegas VegasConfig
}

// Config describes a complete transport stack.
type Config struct {
	Components []Component

	// Network and Address locate the forwarder.
	// Empty Network means the in-process loopback forwarder.
	Network string
	Address string

	Socket sockettransport.Config
	Vegas  VegasConfig
	Signer ccnx.Signer
}

// Has determines whether the stack contains a component.
func (cfg Config) Has(comp Component) bool {
	for _, c := range cfg.Components {
		if c == comp {
			return true
		}
	}
	return false
}

// Compose builds the Config of a stack.
func Compose(kind Kind, protocol Protocol, opts Options) (cfg Config, e error) {
	switch kind {
	case KindMessage, KindChunked:
	default:
		return cfg, fmt.Errorf("unknown stack kind %s", kind)
	}

	cfg.Components = append(cfg.Components, ComponentAPIConnector)
	if kind == KindChunked {
		cfg.Components = append(cfg.Components, ComponentVegas)
		cfg.Vegas = opts.Vegas
	}
	cfg.Components = append(cfg.Components, ComponentTLVCodec)
	cfg.Signer = opts.Signer

	switch protocol {
	case ProtocolLoopback:
		cfg.Components = append(cfg.Components, ComponentLocalForwarder)
		if bentPipe, ok := os.LookupEnv(EnvBentPipeName); ok && bentPipe != "" {
			cfg.Network, cfg.Address = "unix", bentPipe
		} else {
			logger.Info("BENT_PIPE_NAME is not set, using in-process loopback forwarder",
				zap.String("hint", "set BENT_PIPE_NAME to the path of a local forwarder socket, such as /tmp/test_ccnx_Portal"))
		}
	case ProtocolMetis:
		cfg.Components = append(cfg.Components, ComponentMetisForwarder)
		if cfg.Network, cfg.Address, e = metisAddress(opts.LocalForwarder); e != nil {
			return cfg, e
		}
	default:
		return cfg, fmt.Errorf("unknown protocol %d", protocol)
	}
	return cfg, nil
}

func metisAddress(localForwarder string) (network, address string, e error) {
	host, port := "127.0.0.1", strconv.Itoa(DefaultMetisPort)
	network = "tcp"
	if localForwarder != "" {
		u, e := url.Parse(localForwarder)
		if e != nil {
			return "", "", fmt.Errorf("bad LocalForwarder %q: %w", localForwarder, e)
		}
		switch u.Scheme {
		case "unix":
			return "unix", u.Path, nil
		case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6":
			network = u.Scheme
		default:
			return "", "", fmt.Errorf("bad LocalForwarder scheme %q", u.Scheme)
		}
		if h := u.Hostname(); h != "" {
			host = h
		}
		if p := u.Port(); p != "" {
			port = p
		}
	}

	if env, ok := os.LookupEnv(EnvMetisPort); ok {
		n, e := strconv.ParseUint(env, 10, 16)
		if e != nil {
			return "", "", fmt.Errorf("bad %s %q: %w", EnvMetisPort, env, e)
		}
		port = strconv.FormatUint(n, 10)
	}
	return network, net.JoinHostPort(host, port), nil
}
