package portal_test

import (
	"testing"
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/an"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/ccnxtestenv"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/portal"
	"go4.org/must"
	"golang.org/x/sys/unix"
)

func makePortal(t testing.TB, factory *portal.Factory, backend portal.Backend) *portal.Portal {
	_, require := makeAR(t)
	p, e := portal.New(portal.AttributesNonBlocking, portal.NewStack(factory, portal.AttributesNonBlocking, backend))
	require.NoError(e)
	return p
}

func TestHelloGoodbye(t *testing.T) {
	assert, require := makeAR(t)
	factory := makeFactory(t)

	p, e := factory.CreatePortal(portal.LoopBack)
	require.NoError(e)
	defer must.Close(p)

	assert.Equal(portal.StateActive, p.State())
	assert.False(p.IsError())
	assert.Equal(0, p.ErrorCode())
	assert.False(p.IsEOF())
	assert.Equal(portal.SentinelDescriptor, p.Descriptor())
	assert.Equal(factory.KeyID(), p.KeyID())

	require.NoError(p.Send(ccnx.NewInterest(ccnx.ParseName("lci:/Hello/World"), nil).ToMessage(), l3.Never))
	require.NoError(p.Send(ccnx.NewInterest(ccnx.ParseName("lci:/Goodbye/World"), nil).ToMessage(), l3.Never))

	msg, e := p.Receive(l3.Never)
	require.NoError(e)
	require.True(msg.IsInterest())
	assert.Equal("lci:/Hello/World", msg.Name().String())

	msg, e = p.Receive(l3.Never)
	require.NoError(e)
	require.True(msg.IsInterest())
	assert.Equal("lci:/Goodbye/World", msg.Name().String())

	_, e = p.Receive(l3.Never)
	assert.ErrorIs(e, portal.ErrNoMessage)
	assert.True(p.IsError())
	assert.Equal(int(unix.ENOMSG), p.ErrorCode())
	assert.ErrorIs(p.LastError(), portal.ErrNoMessage)

	require.NoError(p.Send(ccnx.NewInterest(ccnx.ParseName("lci:/again"), nil).ToMessage(), l3.Never))
	assert.False(p.IsError())

	assert.ErrorIs(p.SetAttributes(portal.AttributesBlocking), portal.ErrNotSupported)
	assert.Nil(p.Attributes())
}

func TestConstructionFailure(t *testing.T) {
	assert, _ := makeAR(t)
	factory := makeFactory(t)

	st := portal.NewStub(portal.StubConfig{StartError: portal.ErrStubStart})
	p, e := portal.New(portal.AttributesBlocking, portal.NewStack(factory, portal.AttributesBlocking, st))
	assert.Nil(p)
	assert.ErrorIs(e, portal.ErrStubStart)

	cnt := st.Counters()
	assert.Equal(1, cnt.NStart)
	assert.Equal(0, cnt.NStop)
	assert.Equal(1, cnt.NClose)
	assert.Equal(1, factory.RefCount())
}

func TestFlush(t *testing.T) {
	assert, require := makeAR(t)
	factory := makeFactory(t)

	b := newRecordingBackend()
	b.ackFlush, b.nNoise = true, 3
	p := makePortal(t, factory, b)
	defer must.Close(p)

	require.NoError(p.Send(ccnx.NewInterest(ccnx.ParseName("lci:/before"), nil).ToMessage(), l3.Never))
	require.NoError(p.Flush(l3.Never))
	assert.False(p.IsError())
	// before, flush request, 3x(noise Interest, unrelated ACK), matching ACK
	assert.Equal(9, b.NReceive())

	_, e := p.Receive(l3.Immediate)
	assert.ErrorIs(e, portal.ErrNoMessage)

	sent := b.Sent()
	require.Len(sent, 2)
	require.True(sent[1].IsControl())
	assert.Equal(an.CpiOpFlush, sent[1].Control.Op)
}

func TestFlushFailure(t *testing.T) {
	assert, require := makeAR(t)
	factory := makeFactory(t)

	b := newRecordingBackend()
	p := makePortal(t, factory, b)
	defer must.Close(p)

	for i := 0; i < 3; i++ {
		require.NoError(p.Send(ccnx.NewInterest(ccnx.ParseName("lci:/pending"), nil).ToMessage(), l3.Never))
	}

	e := p.Flush(l3.Never)
	assert.ErrorIs(e, portal.ErrNoMessage)
	assert.True(p.IsError())
	// 3 pending, flush request, then the empty queue ends the flush
	assert.Equal(5, b.NReceive())
}

func TestFlushNack(t *testing.T) {
	assert, require := makeAR(t)
	factory := makeFactory(t)

	b := newRecordingBackend()
	b.nackFlush = true
	p := makePortal(t, factory, b)
	defer must.Close(p)

	e := p.Flush(l3.Never)
	assert.ErrorIs(e, portal.ErrNoMessage)
	assert.True(p.IsError())
	// flush request, matching NACK, then the empty queue ends the flush
	assert.Equal(3, b.NReceive())

	sent := b.Sent()
	require.Len(sent, 1)
	assert.Equal(an.CpiOpFlush, sent[0].Control.Op)
}

func TestListen(t *testing.T) {
	assert, require := makeAR(t)
	factory := makeFactory(t)
	factory.SetProperty(portal.PropLocalRouterName, "lci:/router")

	b := newRecordingBackend()
	p := makePortal(t, factory, b)
	defer must.Close(p)

	t0 := time.Now()
	require.NoError(p.Listen(ccnx.ParseName("lci:/Hello"), time.Hour, l3.Never))
	assert.False(p.IsError())

	sent := b.Sent()
	require.Len(sent, 1)
	require.True(sent[0].IsInterest())
	assert.Equal("lci:/router/anchor", sent[0].Name().String())
	anchor, e := portal.DeserializeAnchor(sent[0].Interest.Payload)
	require.NoError(e)
	assert.Equal("lci:/Hello", anchor.Prefix.String())
	assert.InDelta(t0.Add(time.Hour).Unix(), anchor.ExpireTime, 2)
	assert.Equal(1, b.NReceive())

	_, e = p.Receive(l3.Immediate)
	assert.ErrorIs(e, portal.ErrNoMessage)
}

func TestListenAnchorFailureIgnored(t *testing.T) {
	assert, require := makeAR(t)
	factory := makeFactory(t)

	p := makePortal(t, factory, &dropBackend{Loopback: portal.NewLoopback()})
	defer must.Close(p)

	require.NoError(p.Listen(ccnx.ParseName("lci:/Hello"), time.Minute, l3.Never))
	assert.False(p.IsError())
	assert.Equal(0, p.ErrorCode())
}

func TestListenAnchorSendFailure(t *testing.T) {
	assert, require := makeAR(t)
	factory := makeFactory(t)

	b := newRecordingBackend()
	b.sendErr = l3.ErrWouldBlock
	p := makePortal(t, factory, b)
	defer must.Close(p)

	require.NoError(p.Listen(ccnx.ParseName("lci:/Hello"), time.Minute, l3.Immediate))
	assert.False(p.IsError())
	assert.Len(b.Sent(), 1)
	assert.Equal(1, b.NReceive())
}

// dropBackend accepts and discards every sent message.
type dropBackend struct {
	*portal.Loopback
}

func (dropBackend) Send(msg *ccnx.Message, timeout l3.Timeout) error {
	return nil
}

func TestListenFailure(t *testing.T) {
	assert, _ := makeAR(t)
	factory := makeFactory(t)

	b := newRecordingBackend()
	b.listenErr = l3.ErrTimeout
	p := makePortal(t, factory, b)
	defer must.Close(p)

	e := p.Listen(ccnx.ParseName("lci:/Hello"), time.Hour, l3.Never)
	assert.ErrorIs(e, l3.ErrTimeout)
	assert.True(p.IsError())
	assert.Equal(int(unix.ETIMEDOUT), p.ErrorCode())
	assert.Len(b.Sent(), 0)
	assert.Equal(0, b.NReceive())
}

func TestClose(t *testing.T) {
	assert, require := makeAR(t)
	factory := makeFactory(t)

	st := portal.NewStub(portal.StubConfig{})
	p := makePortal(t, factory, st)

	var states []portal.State
	defer must.Close(p.OnStateChange(func(state portal.State) {
		states = append(states, state)
	}))

	assert.Same(p, p.Acquire())
	require.NoError(p.Close())
	assert.Equal(portal.StateActive, p.State())
	assert.Len(states, 0)

	require.NoError(p.Send(ccnx.NewInterest(ccnx.ParseName("lci:/queued"), nil).ToMessage(), l3.Never))
	require.NoError(p.Close())
	assert.Equal(portal.StateDestroyed, p.State())
	assert.Equal([]portal.State{portal.StateDraining, portal.StateStopping, portal.StateDestroyed}, states)

	cnt := st.Counters()
	assert.Equal(1, cnt.NStop)
	assert.Equal(1, cnt.NClose)
	assert.Equal(1, factory.RefCount())

	assert.ErrorIs(p.Send(ccnx.NewInterest(ccnx.ParseName("lci:/late"), nil).ToMessage(), l3.Never), portal.ErrClosed)
	_, e := p.Receive(l3.Never)
	assert.ErrorIs(e, portal.ErrClosed)
	assert.ErrorIs(p.Close(), portal.ErrClosed)
}

func TestDelegatePortal(t *testing.T) {
	assert, require := makeAR(t)
	factory := makeFactory(t)

	d, fw := makeDelegate(t, ccnxtestenv.FakeForwarderConfig{NoiseBeforeAck: 3})
	p := makePortal(t, factory, d)
	defer must.Close(p)

	require.NoError(p.Flush(l3.Microseconds(1000000)))
	_, e := p.Receive(l3.Microseconds(50000))
	assert.ErrorIs(e, l3.ErrTimeout)
	assert.Equal(int(unix.ETIMEDOUT), p.ErrorCode())

	require.NoError(p.Listen(ccnx.ParseName("lci:/Hello"), time.Hour, l3.Microseconds(1000000)))
	assert.False(p.IsError())
	require.NoError(p.Flush(l3.Microseconds(1000000)))
	assert.Equal(1, fw.Count(fw.IsAnchorInterest))
	assert.Equal(1, fw.Count(func(msg *ccnx.Message) bool {
		return msg.IsControl() && msg.Control.Op == an.CpiOpRegister
	}))
}
