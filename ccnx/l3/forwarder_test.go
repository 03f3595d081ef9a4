package l3_test

import (
	"testing"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/sockettransport"
	"go4.org/must"
)

const receiveTimeout = l3.Timeout(1000000)

func attachFace(t testing.TB, fw l3.Forwarder) (*l3.Face, l3.FwFace) {
	_, require := makeAR(t)
	trA, trB, e := sockettransport.Pipe(sockettransport.Config{})
	require.NoError(e)
	fwFace, e := fw.AddTransport(trB)
	require.NoError(e)
	face := l3.NewFace(trA, l3.FaceConfig{})
	t.Cleanup(func() { must.Close(face) })
	return face, fwFace
}

func request(t testing.TB, face *l3.Face, req *ccnx.Control) *ccnx.Control {
	_, require := makeAR(t)
	require.NoError(face.Send(req.ToMessage(), l3.Never))
	msg, e := face.Receive(receiveTimeout)
	require.NoError(e)
	require.True(msg.IsControl())
	return msg.Control
}

func TestForwarder(t *testing.T) {
	assert, require := makeAR(t)
	fw := l3.NewForwarder(l3.ForwarderConfig{})

	consumer, _ := attachFace(t, fw)
	producer, producerFw := attachFace(t, fw)

	prefix := ccnx.ParseName("lci:/Hello")
	flush := ccnx.NewFlushRequest()
	reply := request(t, consumer, flush)
	assert.True(reply.IsAck())
	seq, _ := reply.AckOriginalSequence()
	assert.Equal(flush.Seq, seq)

	reply = request(t, producer, ccnx.NewAddRouteToSelfRequest(prefix))
	assert.True(reply.IsAck())
	routes := producerFw.Routes()
	require.Len(routes, 1)
	assert.True(routes[0].Equal(prefix))

	name := ccnx.ParseName("lci:/Hello/World")
	require.NoError(consumer.Send(ccnx.NewInterest(name, nil).ToMessage(), l3.Never))
	msg, e := producer.Receive(receiveTimeout)
	require.NoError(e)
	require.True(msg.IsInterest())
	assert.True(msg.Interest.Name.Equal(name))

	require.NoError(producer.Send(ccnx.NewContentObject(name, []byte("hi")).ToMessage(), l3.Never))
	msg, e = consumer.Receive(receiveTimeout)
	require.NoError(e)
	require.True(msg.IsContentObject())
	assert.Equal([]byte("hi"), msg.ContentObject.Payload)

	anchorName := ccnx.ParseName("lci:/local/dcr/anchor")
	require.NoError(producer.Send(ccnx.NewInterest(anchorName, []byte("{}")).ToMessage(), l3.Never))
	msg, e = producer.Receive(receiveTimeout)
	require.NoError(e)
	require.True(msg.IsContentObject())
	assert.True(msg.ContentObject.Name.Equal(anchorName))

	reply = request(t, producer, ccnx.NewRemoveRouteToSelfRequest(prefix))
	assert.True(reply.IsAck())
	assert.Len(producerFw.Routes(), 0)

	// no route: dropped
	require.NoError(consumer.Send(ccnx.NewInterest(name, nil).ToMessage(), l3.Never))
	_, e = producer.Receive(l3.Microseconds(50000))
	assert.ErrorIs(e, l3.ErrTimeout)
}

func TestForwarderLoopback(t *testing.T) {
	assert, require := makeAR(t)
	fw := l3.NewForwarder(l3.ForwarderConfig{Loopback: true})
	face, fwFace := attachFace(t, fw)

	name := ccnx.ParseName("lci:/Loop")
	require.NoError(face.Send(ccnx.NewInterest(name, nil).ToMessage(), l3.Never))
	require.NoError(face.Send(ccnx.NewContentObject(name, []byte("x")).ToMessage(), l3.Never))

	msg, e := face.Receive(receiveTimeout)
	require.NoError(e)
	assert.True(msg.IsInterest())
	msg, e = face.Receive(receiveTimeout)
	require.NoError(e)
	assert.True(msg.IsContentObject())

	unknown := &ccnx.Control{Kind: ccnx.ControlRequest, Seq: ccnx.NextSequence(), Op: "CONNECTION"}
	reply := request(t, face, unknown)
	assert.False(reply.IsAck())

	assert.NoError(fwFace.Close())
	_, e = face.Receive(receiveTimeout)
	assert.ErrorIs(e, l3.ErrClosed)
}
