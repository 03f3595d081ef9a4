package portal

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/keychain"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/nnduration"
	"go.uber.org/zap"
)

// Factory property names and default values.
const (
	PropLocalRouterName    = "LocalRouterName"
	PropLocalForwarder     = "LocalForwarder"
	PropLocalRouterTimeout = "LocalRouterTimeout"

	// Flow control properties of chunked portals.
	// Absent properties take transportstack.VegasConfig defaults.
	PropVegasInitialWindow = "VegasInitialWindow"
	PropVegasMaxWindow     = "VegasMaxWindow"
	PropVegasRetxTimeout   = "VegasRetxTimeout"

	DefaultLocalRouterName    = "lci:/local/dcr"
	DefaultLocalForwarder     = "tcp://127.0.0.1:9695"
	DefaultLocalRouterTimeout = 1000000
)

// StackImpl creates a Portal bound to a particular backend.
type StackImpl func(factory *Factory, attrs Attributes) (*Portal, error)

// Factory holds the identity and configuration shared by portals.
// It is reference counted: every Stack holds a reference.
type Factory struct {
	identity keychain.Identity
	signer   keychain.Signer
	keyID    []byte
	refcnt   atomic.Int32

	propMutex sync.RWMutex
	props     map[string]string
}

// NewFactory creates a Factory with one reference held by the caller.
func NewFactory(identity keychain.Identity) (*Factory, error) {
	if identity == nil {
		return nil, ErrInvalidIdentity
	}
	signer, e := identity.CreateSigner()
	if e != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIdentity, e)
	}

	factory := &Factory{
		identity: identity,
		signer:   signer,
		keyID:    signer.KeyID(),
		props: map[string]string{
			PropLocalRouterName:    DefaultLocalRouterName,
			PropLocalForwarder:     DefaultLocalForwarder,
			PropLocalRouterTimeout: strconv.Itoa(DefaultLocalRouterTimeout),
		},
	}
	factory.refcnt.Store(1)
	return factory, nil
}

// Identity returns the identity.
func (factory *Factory) Identity() keychain.Identity {
	return factory.identity
}

// Signer returns the signer derived from the identity.
func (factory *Factory) Signer() keychain.Signer {
	return factory.signer
}

// KeyID returns the key identifier of the signer.
func (factory *Factory) KeyID() []byte {
	return factory.keyID
}

// Property returns a property value, or def if the property is not set.
func (factory *Factory) Property(name, def string) string {
	factory.propMutex.RLock()
	defer factory.propMutex.RUnlock()
	if value, ok := factory.props[name]; ok {
		return value
	}
	return def
}

// PropertyInt returns a property value as integer, or def if the property is not set or not an integer.
func (factory *Factory) PropertyInt(name string, def int64) int64 {
	value := factory.Property(name, "")
	if value == "" {
		return def
	}
	n, e := strconv.ParseInt(value, 10, 64)
	if e != nil {
		logger.Warn("property is not an integer", zap.String("name", name), zap.String("value", value))
		return def
	}
	return n
}

// PropertyDuration returns a property value as duration, or def if the property is not set or invalid.
// The value is either a number of microseconds or a duration string such as "1.5s".
func (factory *Factory) PropertyDuration(name string, def time.Duration) time.Duration {
	value := factory.Property(name, "")
	if value == "" {
		return def
	}
	us, e := nnduration.ParseMicroseconds(value)
	if e != nil {
		logger.Warn("property is not a duration", zap.String("name", name), zap.String("value", value))
		return def
	}
	return us.Duration()
}

// SetProperty assigns a property value.
func (factory *Factory) SetProperty(name, value string) {
	factory.propMutex.Lock()
	defer factory.propMutex.Unlock()
	factory.props[name] = value
}

// Acquire adds a reference.
func (factory *Factory) Acquire() *Factory {
	factory.refcnt.Add(1)
	return factory
}

// Release removes a reference.
// It reports whether this was the last reference.
func (factory *Factory) Release() (last bool) {
	n := factory.refcnt.Add(-1)
	if n < 0 {
		logger.Panic("Factory released too many times")
	}
	return n == 0
}

// RefCount returns the current number of references.
func (factory *Factory) RefCount() int {
	return int(factory.refcnt.Load())
}

// CreatePortal creates a Portal with default (non-blocking) attributes.
func (factory *Factory) CreatePortal(impl StackImpl) (*Portal, error) {
	return impl(factory, AttributesNonBlocking)
}
