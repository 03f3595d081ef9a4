package l3_test

import (
	"testing"
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/sockettransport"
	"go4.org/must"
)

func TestTimeout(t *testing.T) {
	assert, _ := makeAR(t)

	assert.True(l3.Never.IsNever())
	assert.False(l3.Immediate.IsNever())
	assert.Equal(1500*time.Microsecond, l3.Microseconds(1500).Duration())
	assert.Equal(l3.Microseconds(2000), l3.FromDuration(2*time.Millisecond))
	assert.Equal(l3.Never, l3.FromDuration(-time.Second))
	assert.Equal("never", l3.Never.String())
	assert.Equal("immediate", l3.Immediate.String())
	assert.Equal("1000000us", l3.Microseconds(1000000).String())
}

func makeFacePair(t testing.TB, cfgA l3.FaceConfig) (faceA, faceB *l3.Face) {
	_, require := makeAR(t)
	trA, trB, e := sockettransport.Pipe(sockettransport.Config{})
	require.NoError(e)
	faceA, faceB = l3.NewFace(trA, cfgA), l3.NewFace(trB, l3.FaceConfig{})
	t.Cleanup(func() {
		must.Close(faceA)
		must.Close(faceB)
	})
	return
}

func TestFace(t *testing.T) {
	assert, require := makeAR(t)
	faceA, faceB := makeFacePair(t, l3.FaceConfig{NotifyOnOpen: true})

	msg, e := faceA.Receive(l3.Never)
	require.NoError(e)
	require.True(msg.IsControl())
	assert.True(msg.Control.IsConnectionOpen())

	_, e = faceA.Receive(l3.Immediate)
	assert.ErrorIs(e, l3.ErrWouldBlock)
	t0 := time.Now()
	_, e = faceA.Receive(l3.Microseconds(20000))
	assert.ErrorIs(e, l3.ErrTimeout)
	assert.GreaterOrEqual(time.Since(t0), 20*time.Millisecond)

	for _, name := range []string{"lci:/A", "lci:/B", "lci:/C"} {
		require.NoError(faceB.Send(ccnx.NewInterest(ccnx.ParseName(name), nil).ToMessage(), l3.Never))
	}
	for _, name := range []string{"lci:/A", "lci:/B", "lci:/C"} {
		msg, e := faceA.Receive(l3.Microseconds(1000000))
		require.NoError(e)
		assert.Equal(name, msg.Name().String())
	}

	assert.False(faceA.IsNonBlocking())
	require.NoError(faceA.SetNonBlocking(true))
	assert.True(faceA.IsNonBlocking())
	_, e = faceA.Receive(l3.Microseconds(1000))
	assert.ErrorIs(e, l3.ErrTimeout)
	require.NoError(faceA.Send(ccnx.NewInterest(ccnx.ParseName("lci:/D"), nil).ToMessage(), l3.Never))
	msg, e = faceB.Receive(l3.Microseconds(1000000))
	require.NoError(e)
	assert.Equal("lci:/D", msg.Name().String())

	assert.Greater(faceA.Descriptor(), 0)
	assert.Equal(faceA.Descriptor(), faceA.Descriptor())
	assert.NotEqual(faceA.Descriptor(), faceB.Descriptor())

	var empty ccnx.Message
	assert.ErrorIs(faceA.Send(&empty, l3.Never), ccnx.ErrNoMessageBody)
}

func TestFaceClose(t *testing.T) {
	assert, require := makeAR(t)
	faceA, _ := makeFacePair(t, l3.FaceConfig{})

	done := make(chan error)
	go func() {
		_, e := faceA.Receive(l3.Never)
		done <- e
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(faceA.Close())
	select {
	case e := <-done:
		assert.ErrorIs(e, l3.ErrClosed)
	case <-time.After(time.Second):
		assert.Fail("Receive not interrupted by Close")
	}

	e := faceA.Send(ccnx.NewInterest(ccnx.ParseName("lci:/A"), nil).ToMessage(), l3.Never)
	assert.ErrorIs(e, l3.ErrClosed)
	assert.NoError(faceA.Close())
}

type countingSigner struct {
	n int
}

func (signer *countingSigner) KeyID() []byte {
	return []byte{0xB0}
}

func (signer *countingSigner) Sign(input []byte) ([]byte, error) {
	signer.n++
	return []byte{0xC0}, nil
}

func TestFaceSigner(t *testing.T) {
	assert, require := makeAR(t)
	var signer countingSigner
	faceA, faceB := makeFacePair(t, l3.FaceConfig{Signer: &signer})

	co := ccnx.NewContentObject(ccnx.ParseName("lci:/S"), []byte("s"))
	require.NoError(faceA.Send(co.ToMessage(), l3.Never))
	assert.False(co.IsSigned())
	require.NoError(faceA.Send(ccnx.NewInterest(ccnx.ParseName("lci:/I"), nil).ToMessage(), l3.Never))

	msg, e := faceB.Receive(l3.Microseconds(1000000))
	require.NoError(e)
	require.True(msg.IsContentObject())
	assert.Equal([]byte{0xB0}, msg.ContentObject.KeyID)
	assert.Equal([]byte{0xC0}, msg.ContentObject.Signature)
	assert.Equal(1, signer.n)

	msg, e = faceB.Receive(l3.Microseconds(1000000))
	require.NoError(e)
	assert.True(msg.IsInterest())
	assert.Equal(1, signer.n)
}
