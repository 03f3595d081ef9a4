package portal_test

import (
	"sync"
	"testing"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/ccnxtestenv"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/sockettransport"
	"github.com/parc-ccnx-archive/Libccnx-portal/portal"
	"go4.org/must"
	"golang.org/x/sys/unix"
)

// recordingBackend wraps Loopback and records Send and Receive calls.
// If ackFlush is set, it answers a flush request with noise messages followed by the matching ACK.
// If nackFlush is set, it answers a flush request with a matching NACK.
type recordingBackend struct {
	*portal.Loopback
	ackFlush  bool
	nackFlush bool
	nNoise    int
	listenErr error
	sendErr   error

	mutex    sync.Mutex
	sent     []*ccnx.Message
	nReceive int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{Loopback: portal.NewLoopback()}
}

func (b *recordingBackend) Send(msg *ccnx.Message, timeout l3.Timeout) error {
	b.mutex.Lock()
	b.sent = append(b.sent, msg)
	b.mutex.Unlock()

	if b.sendErr != nil {
		return b.sendErr
	}
	if e := b.Loopback.Send(msg, timeout); e != nil {
		return e
	}
	if b.ackFlush && msg.IsControl() && msg.Control.Op == an.CpiOpFlush && msg.Control.Kind == ccnx.ControlRequest {
		for i := 0; i < b.nNoise; i++ {
			b.Loopback.Send(ccnx.NewInterest(ccnx.ParseName("lci:/noise"), nil).ToMessage(), timeout)
			b.Loopback.Send(ccnx.NewAck(ccnx.NewFlushRequest()).ToMessage(), timeout)
		}
		b.Loopback.Send(ccnx.NewAck(msg.Control).ToMessage(), timeout)
	}
	if b.nackFlush && msg.IsControl() && msg.Control.Op == an.CpiOpFlush && msg.Control.Kind == ccnx.ControlRequest {
		b.Loopback.Send(ccnx.NewNack(msg.Control).ToMessage(), timeout)
	}
	return nil
}

func (b *recordingBackend) Receive(timeout l3.Timeout) (*ccnx.Message, error) {
	b.mutex.Lock()
	b.nReceive++
	b.mutex.Unlock()
	return b.Loopback.Receive(timeout)
}

func (b *recordingBackend) Listen(name ccnx.Name, timeout l3.Timeout) error {
	return b.listenErr
}

func (b *recordingBackend) Sent() []*ccnx.Message {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]*ccnx.Message(nil), b.sent...)
}

func (b *recordingBackend) NReceive() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.nReceive
}

func TestLoopbackFIFO(t *testing.T) {
	assert, require := makeAR(t)

	lb := portal.NewLoopback()
	defer must.Close(lb)
	require.NoError(lb.Start())

	names := []string{"lci:/A", "lci:/B/1", "lci:/C", "lci:/B/2", "lci:/A"}
	for _, name := range names {
		assert.NoError(lb.Send(ccnx.NewInterest(ccnx.ParseName(name), nil).ToMessage(), l3.Never))
	}
	for _, name := range names {
		msg, e := lb.Receive(l3.Never)
		require.NoError(e)
		assert.Equal(name, msg.Name().String())
	}
	_, e := lb.Receive(l3.Never)
	assert.ErrorIs(e, portal.ErrNoMessage)
	assert.Equal(int(unix.ENOMSG), portal.ErrorCode(e))

	assert.NoError(lb.Listen(ccnx.ParseName("lci:/A"), l3.Never))
	assert.NoError(lb.Ignore(ccnx.ParseName("lci:/A"), l3.Never))
	_, e = lb.Receive(l3.Immediate)
	assert.ErrorIs(e, portal.ErrNoMessage)

	assert.Equal(portal.SentinelDescriptor, lb.Descriptor())
	assert.ErrorIs(lb.SetAttributes(portal.AttributesBlocking), portal.ErrNotSupported)
	assert.Nil(lb.Attributes())
	require.NoError(lb.Stop())
}

func TestStub(t *testing.T) {
	assert, require := makeAR(t)

	st := portal.NewStub(portal.StubConfig{})
	require.NoError(st.Start())
	require.NoError(st.Listen(ccnx.ParseName("lci:/L"), l3.Never))
	require.NoError(st.Ignore(ccnx.ParseName("lci:/I"), l3.Never))

	require.NoError(st.Send(ccnx.NewInterest(ccnx.ParseName("lci:/1"), nil).ToMessage(), l3.Never))
	require.NoError(st.Send(ccnx.NewInterest(ccnx.ParseName("lci:/2"), nil).ToMessage(), l3.Never))
	msg, e := st.Receive(l3.Never)
	require.NoError(e)
	assert.Equal("lci:/1", msg.Name().String())

	assert.Equal(portal.SentinelDescriptor, st.Descriptor())
	assert.ErrorIs(st.SetAttributes(portal.AttributesNonBlocking), portal.ErrNotSupported)
	require.NoError(st.Stop())
	require.NoError(st.Close())

	cnt := st.Counters()
	assert.Equal(1, cnt.NStart)
	assert.Equal(1, cnt.NStop)
	assert.Equal(1, cnt.NClose)
	require.Len(cnt.Listened, 1)
	assert.Equal("lci:/L", cnt.Listened[0].String())
	require.Len(cnt.Ignored, 1)
	assert.Equal("lci:/I", cnt.Ignored[0].String())

	_, e = st.Receive(l3.Never)
	assert.ErrorIs(e, portal.ErrNoMessage)

	failing := portal.NewStub(portal.StubConfig{StartError: portal.ErrStubStart})
	assert.ErrorIs(failing.Start(), portal.ErrStubStart)
}

func makeDelegate(t testing.TB, cfg ccnxtestenv.FakeForwarderConfig) (*portal.Delegate, *ccnxtestenv.FakeForwarder) {
	_, require := makeAR(t)
	trA, trB, e := sockettransport.Pipe(sockettransport.Config{})
	require.NoError(e)
	d := portal.NewDelegate(l3.NewFace(trA, l3.FaceConfig{}))
	fw := ccnxtestenv.NewFakeForwarder(trB, cfg)
	t.Cleanup(func() {
		must.Close(d)
		must.Close(fw)
	})
	return d, fw
}

func TestDelegate(t *testing.T) {
	assert, require := makeAR(t)
	d, fw := makeDelegate(t, ccnxtestenv.FakeForwarderConfig{})

	require.NoError(d.Listen(ccnx.ParseName("lci:/P"), l3.Microseconds(1000000)))
	require.NoError(d.Ignore(ccnx.ParseName("lci:/P"), l3.Microseconds(1000000)))

	received := fw.Received()
	require.Len(received, 2)
	assert.Equal(an.CpiOpRegister, received[0].Control.Op)
	assert.Equal("lci:/P", received[0].Control.Prefix.String())
	assert.Equal(an.CpiOpUnregister, received[1].Control.Op)

	assert.Greater(d.Descriptor(), 0)
	assert.False(d.Attributes().NonBlocking)
	require.NoError(d.SetAttributes(portal.AttributesNonBlocking))
	assert.True(d.Attributes().NonBlocking)
	assert.True(d.Transport().IsNonBlocking())
}

func TestDelegateListenFailure(t *testing.T) {
	assert, require := makeAR(t)

	d, _ := makeDelegate(t, ccnxtestenv.FakeForwarderConfig{IgnoreControl: true})
	e := d.Listen(ccnx.ParseName("lci:/P"), l3.Microseconds(50000))
	assert.ErrorIs(e, l3.ErrTimeout)

	d, fw := makeDelegate(t, ccnxtestenv.FakeForwarderConfig{IgnoreControl: true})
	require.NoError(fw.Send(ccnx.NewInterest(ccnx.ParseName("lci:/P/data"), nil).ToMessage()))
	e = d.Ignore(ccnx.ParseName("lci:/P"), l3.Microseconds(1000000))
	assert.ErrorIs(e, portal.ErrNoControlResponse)
}
