package main

import (
	"testing"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/parc-ccnx-archive/Libccnx-portal/core/testenv"
)

func TestResponder(t *testing.T) {
	assert, require := testenv.MakeAR(t)
	cache, e := lru.New(2)
	require.NoError(e)
	r := responder{cache: cache}

	freshness = time.Hour
	co0 := r.respond(contentName)
	assert.Equal(contentName.String(), co0.Name.String())
	assert.Contains(string(co0.Payload), "Hello World. The time is ")
	assert.Same(co0, r.respond(contentName))

	freshness = 0
	assert.NotSame(co0, r.respond(contentName))
	assert.Equal(1, cache.Len())
}
