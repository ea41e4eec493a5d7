package asynchook

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/typejson"
)

type countingHooks struct {
	typejson.NopHooks
	mu    sync.Mutex
	built map[reflect.Type]typejson.Strategy
	heals int
	block chan struct{}
}

func (c *countingHooks) CodecBuilt(t reflect.Type, s typejson.Strategy) {
	c.mu.Lock()
	c.built[t] = s
	c.mu.Unlock()
}

func (c *countingHooks) SelfHeal(string, string) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.heals++
	c.mu.Unlock()
}

func TestForwardsAndDrainsOnClose(t *testing.T) {
	inner := &countingHooks{built: map[reflect.Type]typejson.Strategy{}}
	h := New(inner, 2, 64)
	en := typejson.New(typejson.Options{Hooks: h})

	_, err := en.Stringify(map[string][]int{"a": {1}})
	require.NoError(t, err)
	h.SelfHeal("k", "corrupt frame")
	h.Close()
	h.Close()

	assert.Equal(t, typejson.StrategyMap, inner.built[reflect.TypeFor[map[string][]int]()])
	assert.Equal(t, typejson.StrategyDynamicList, inner.built[reflect.TypeFor[[]int]()])
	assert.Equal(t, 1, inner.heals)
	assert.Zero(t, h.Dropped())

	h.SelfHeal("k", "late")
	assert.Equal(t, uint64(1), h.Dropped())
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countingHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// one event held by the worker, one queued, the rest dropped
	for i := 0; i < 10; i++ {
		h.SelfHeal("k", "r")
	}
	close(inner.block)
	h.Close()

	assert.Equal(t, uint64(10), uint64(inner.heals)+h.Dropped())
	assert.GreaterOrEqual(t, h.Dropped(), uint64(8))
}
