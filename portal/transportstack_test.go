package portal_test

import (
	"testing"
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/transportstack"
	"github.com/parc-ccnx-archive/Libccnx-portal/portal"
	"go4.org/must"
)

const receiveTimeout = l3.Timeout(2000000)

func TestTransportLoopBack(t *testing.T) {
	assert, require := makeAR(t)
	t.Setenv(transportstack.EnvBentPipeName, "")
	factory := makeFactory(t)

	producer, e := factory.CreatePortal(portal.TransportLoopBack)
	require.NoError(e)
	defer must.Close(producer)
	assert.Equal(portal.StateActive, producer.State())
	assert.True(producer.Attributes().NonBlocking)
	assert.Greater(producer.Descriptor(), 0)

	consumer, e := factory.CreatePortal(portal.TransportLoopBack)
	require.NoError(e)
	defer must.Close(consumer)
	assert.NotEqual(producer.Descriptor(), consumer.Descriptor())

	prefix := ccnx.ParseName("lci:/TestTransportLoopBack")
	require.NoError(producer.Listen(prefix, time.Hour, receiveTimeout))
	require.NoError(producer.Flush(receiveTimeout))

	name := prefix.Append(ccnx.ParseNameSegment("World"))
	require.NoError(consumer.Send(ccnx.NewInterest(name, nil).ToMessage(), receiveTimeout))

	msg, e := producer.Receive(receiveTimeout)
	require.NoError(e)
	require.True(msg.IsInterest())
	assert.Equal(name.String(), msg.Name().String())

	require.NoError(producer.Send(ccnx.NewContentObject(name, []byte("Hello World")).ToMessage(), receiveTimeout))

	msg, e = consumer.Receive(receiveTimeout)
	require.NoError(e)
	require.True(msg.IsContentObject())
	assert.Equal("Hello World", string(msg.ContentObject.Payload))
	assert.True(msg.ContentObject.IsSigned())
	assert.Equal(factory.KeyID(), msg.ContentObject.KeyID)

	require.NoError(producer.Ignore(prefix, receiveTimeout))
}

func TestTransportLoopBackEcho(t *testing.T) {
	assert, require := makeAR(t)
	t.Setenv(transportstack.EnvBentPipeName, "")
	factory := makeFactory(t)

	p, e := factory.CreatePortal(portal.TransportLoopBack)
	require.NoError(e)
	defer must.Close(p)

	name := ccnx.ParseName("lci:/TestTransportLoopBackEcho/unrouted")
	require.NoError(p.Send(ccnx.NewInterest(name, nil).ToMessage(), receiveTimeout))
	msg, e := p.Receive(receiveTimeout)
	require.NoError(e)
	require.True(msg.IsInterest())
	assert.Equal(name.String(), msg.Name().String())
}

func TestMessageUnreachable(t *testing.T) {
	assert, _ := makeAR(t)
	factory := makeFactory(t)
	factory.SetProperty(portal.PropLocalForwarder, "unix:///nonexistent/ccnx-portal-test.sock")

	p, e := factory.CreatePortal(portal.Message)
	assert.Nil(p)
	assert.Error(e)
	assert.Equal(1, factory.RefCount())

	factory.SetProperty(portal.PropLocalForwarder, "http://127.0.0.1")
	p, e = factory.CreatePortal(portal.Chunked)
	assert.Nil(p)
	assert.Error(e)
}
