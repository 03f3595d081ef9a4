// Package ccnxtestenv contains helpers to exercise CCNx transports and portals in test code.
package ccnxtestenv

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx/l3"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/testenv"
)

// L3FaceTester tests a pair of connected Transports.
type L3FaceTester struct {
	Count            int
	LossTolerance    float64
	InterestInterval time.Duration
	ReceiveTimeout   time.Duration
}

func (c *L3FaceTester) applyDefaults() {
	if c.Count <= 0 {
		c.Count = 200
	}
	if c.LossTolerance <= 0.0 {
		c.LossTolerance = 0.05
	}
	if c.InterestInterval <= 0 {
		c.InterestInterval = 100 * time.Microsecond
	}
	if c.ReceiveTimeout <= 0 {
		c.ReceiveTimeout = 500 * time.Millisecond
	}
}

// CheckTransport tests a pair of connected Transports.
// Interests sent from trA are answered with ContentObjects by trB.
func (c *L3FaceTester) CheckTransport(t *testing.T, trA, trB l3.Transport) {
	c.applyDefaults()
	assert, _ := testenv.MakeAR(t)

	faceA, faceB := l3.NewFace(trA, l3.FaceConfig{}), l3.NewFace(trB, l3.FaceConfig{})
	defer faceA.Close()
	defer faceB.Close()
	receiveTimeout := l3.FromDuration(c.ReceiveTimeout)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for {
			msg, e := faceB.Receive(receiveTimeout)
			if e != nil {
				return
			}
			if !assert.True(msg.IsInterest()) {
				continue
			}
			co := ccnx.NewContentObject(msg.Interest.Name, []byte(msg.Interest.Name[1].String()))
			assert.NoError(faceB.Send(co.ToMessage(), l3.Never))
		}
	}()

	nContentObjects := 0
	hasMessage := make([]bool, c.Count)
	go func() {
		defer wg.Done()
		for nContentObjects < c.Count {
			msg, e := faceA.Receive(receiveTimeout)
			if e != nil {
				return
			}
			if !assert.True(msg.IsContentObject()) {
				continue
			}
			i, e := strconv.Atoi(string(msg.ContentObject.Payload))
			if !assert.NoError(e) || !assert.Less(i, c.Count) {
				continue
			}
			assert.False(hasMessage[i], "%d", i)
			hasMessage[i] = true
			nContentObjects++
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < c.Count; i++ {
			interest := ccnx.NewInterest(ccnx.ParseName(fmt.Sprintf("lci:/A/%d", i)), nil)
			assert.NoError(faceA.Send(interest.ToMessage(), l3.Never))
			time.Sleep(c.InterestInterval)
		}
	}()

	wg.Wait()
	assert.InEpsilon(c.Count, nContentObjects, c.LossTolerance)
}
