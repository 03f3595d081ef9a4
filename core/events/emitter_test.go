package events_test

import (
	"testing"

	"github.com/parc-ccnx-archive/Libccnx-portal/core/events"
	"go4.org/must"
)

func TestOnCancel(t *testing.T) {
	assert, _ := makeAR(t)

	nA, nB, nC, nD := 0, 0, 0, 0
	fA := func() { nA++ }
	fB := func() { nB++ }
	fC := func() { nC++ }
	fD := func() { nD++ }

	emitter := events.NewEmitter()
	cancelA := emitter.On(1, fA)
	cancelB := emitter.On(1, fB)
	cancelC := emitter.Once(2, fC)
	cancelD := emitter.Once(2, fD)

	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(1, nB)

	must.Close(cancelA)
	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(2, nB)

	must.Close(cancelA)
	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(3, nB)

	must.Close(cancelB)
	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(3, nB)

	must.Close(cancelD)
	emitter.EmitSync(2)
	assert.Equal(1, nC)
	assert.Equal(0, nD)

	emitter.EmitSync(2)
	assert.Equal(1, nC)
	assert.Equal(0, nD)

	must.Close(cancelC)
	emitter.EmitSync(2)
	assert.Equal(1, nC)
	assert.Equal(0, nD)
}

func TestArgument(t *testing.T) {
	assert, _ := makeAR(t)

	var got []string
	emitter := events.NewEmitter()
	emitter.On("state", func(s string) { got = append(got, s) })
	emitter.EmitSync("state", "up")
	emitter.EmitSync("state", "down")
	assert.Equal([]string{"up", "down"}, got)
}
