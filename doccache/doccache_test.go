package doccache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/typejson"
	c "github.com/unkn0wn-root/typejson/codec"
	"github.com/unkn0wn-root/typejson/internal/wire"
	"github.com/unkn0wn-root/typejson/jsonvalue"
	"github.com/unkn0wn-root/typejson/parser"
	"github.com/unkn0wn-root/typejson/parser/stdjson"
	pr "github.com/unkn0wn-root/typejson/provider"
	"github.com/unkn0wn-root/typejson/provider/redis"
	"github.com/unkn0wn-root/typejson/provider/ristretto"
)

type memProvider struct {
	mu     sync.Mutex
	m      map[string][]byte
	getErr error
	reject bool
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string][]byte)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, false, p.getErr
	}
	v, ok := p.m[key]
	return v, ok, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject {
		return false, nil
	}
	p.m[key] = value
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, key)
	return nil
}

func (p *memProvider) Close(context.Context) error { return nil }

// countingParser records how often the wrapped parser actually runs.
type countingParser struct {
	inner parser.Parser
	mu    sync.Mutex
	n     int
}

func (p *countingParser) Parse(data []byte, entry parser.Entry) (jsonvalue.Value, error) {
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
	return p.inner.Parse(data, entry)
}

func (p *countingParser) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

type healHooks struct {
	typejson.NopHooks
	mu       sync.Mutex
	reasons  []string
	rejected int
	provErrs int
}

func (h *healHooks) SelfHeal(_, reason string) {
	h.mu.Lock()
	h.reasons = append(h.reasons, reason)
	h.mu.Unlock()
}

func (h *healHooks) ProviderSetRejected(string) {
	h.mu.Lock()
	h.rejected++
	h.mu.Unlock()
}

func (h *healHooks) ProviderError(string, string, error) {
	h.mu.Lock()
	h.provErrs++
	h.mu.Unlock()
}

const doc = `{"id":"o-1","items":[{"sku":"a","qty":2},{"sku":"b","qty":1}],"note":"ordered keys survive"}`

func newTestCache(t *testing.T, p pr.Provider, mutate func(*Options)) (*Cache, *countingParser) {
	t.Helper()
	cp := &countingParser{inner: stdjson.New()}
	opts := Options{Namespace: "orders", Provider: p, Parser: cp, MinSize: -1}
	if mutate != nil {
		mutate(&opts)
	}
	dc, err := New(opts)
	require.NoError(t, err)
	return dc, cp
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Provider: newMemProvider()})
	assert.ErrorIs(t, err, ErrNoNamespace)
	_, err = New(Options{Namespace: "x"})
	assert.ErrorIs(t, err, ErrNilProvider)
}

func TestHitAfterMiss(t *testing.T) {
	mp := newMemProvider()
	dc, cp := newTestCache(t, mp, nil)

	v1, err := dc.Parse([]byte(doc), parser.EntryObject)
	require.NoError(t, err)
	v2, err := dc.Parse([]byte(doc), parser.EntryObject)
	require.NoError(t, err)

	assert.Equal(t, 1, cp.calls())
	assert.Equal(t, doc, v1.String())
	assert.Equal(t, doc, v2.String())
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, dc.Stats())

	_, ok := mp.m[dc.Key([]byte(doc))]
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(dc.Key([]byte(doc)), "doc:orders:"))
}

func TestHitReturnsTheMissTree(t *testing.T) {
	const numbers = `{"big":123456789012345678901234567890,"f":1.50,"e":1E2,"neg":-0,"n":[0.1,-7,18446744073709551615]}`
	for name, codec := range map[string]c.Codec[jsonvalue.Value]{
		"default": nil,
		"msgpack": c.Msgpack[jsonvalue.Value]{},
	} {
		t.Run(name, func(t *testing.T) {
			dc, cp := newTestCache(t, newMemProvider(), func(o *Options) { o.Codec = codec })

			miss, err := dc.Parse([]byte(numbers), parser.EntryObject)
			require.NoError(t, err)
			hit, err := dc.Parse([]byte(numbers), parser.EntryObject)
			require.NoError(t, err)

			assert.Equal(t, 1, cp.calls())
			assert.Equal(t, Stats{Hits: 1, Misses: 1}, dc.Stats())
			assert.Equal(t, numbers, miss.String())
			assert.Equal(t, miss.String(), hit.String())
			assert.True(t, miss.Equal(hit))
		})
	}
}

func TestParseErrorsAreNotCached(t *testing.T) {
	mp := newMemProvider()
	dc, cp := newTestCache(t, mp, nil)

	for i := 0; i < 2; i++ {
		_, err := dc.Parse([]byte(`{"a":`), parser.EntryObject)
		assert.Error(t, err)
	}
	assert.Equal(t, 2, cp.calls())
	assert.Empty(t, mp.m)
}

func TestSelfHealCorruptEntries(t *testing.T) {
	cases := map[string]func(k string, mp *memProvider){
		"corrupt frame": func(k string, mp *memProvider) {
			mp.m[k] = []byte("garbage")
		},
		"source length mismatch": func(k string, mp *memProvider) {
			d, _ := wire.DecodeDocument(mp.m[k])
			mp.m[k] = wire.EncodeDocument(d.Entry, int(d.SourceLen)+1, d.SourceSum, d.Payload)
		},
		"source digest mismatch": func(k string, mp *memProvider) {
			// same key and length, different text: a hash collision
			d, _ := wire.DecodeDocument(mp.m[k])
			other := strings.Replace(doc, `"o-1"`, `"o-2"`, 1)
			mp.m[k] = wire.EncodeDocument(d.Entry, len(other), wire.SourceSum([]byte(other)), d.Payload)
		},
		"decode failed": func(k string, mp *memProvider) {
			d, _ := wire.DecodeDocument(mp.m[k])
			mp.m[k] = wire.EncodeDocument(d.Entry, int(d.SourceLen), d.SourceSum, []byte{0xc1})
		},
	}
	for reason, corrupt := range cases {
		t.Run(reason, func(t *testing.T) {
			mp := newMemProvider()
			h := &healHooks{}
			dc, cp := newTestCache(t, mp, func(o *Options) { o.Hooks = h })

			_, err := dc.Parse([]byte(doc), parser.EntryObject)
			require.NoError(t, err)
			corrupt(dc.Key([]byte(doc)), mp)

			v, err := dc.Parse([]byte(doc), parser.EntryObject)
			require.NoError(t, err)
			assert.Equal(t, doc, v.String())
			assert.Equal(t, 2, cp.calls())
			assert.Equal(t, []string{reason}, h.reasons)
			assert.Equal(t, uint64(1), dc.Stats().SelfHeals)

			// re-stored by the second parse
			_, err = dc.Parse([]byte(doc), parser.EntryObject)
			require.NoError(t, err)
			assert.Equal(t, 2, cp.calls())
		})
	}
}

func TestProviderFailuresNeverFailParse(t *testing.T) {
	mp := newMemProvider()
	mp.getErr = errors.New("boom")
	mp.reject = true
	h := &healHooks{}
	dc, _ := newTestCache(t, mp, func(o *Options) { o.Hooks = h })

	v, err := dc.Parse([]byte(doc), parser.EntryObject)
	require.NoError(t, err)
	assert.Equal(t, doc, v.String())
	assert.Equal(t, 1, h.provErrs)
	assert.Equal(t, 1, h.rejected)
}

func TestSmallDocumentsBypass(t *testing.T) {
	mp := newMemProvider()
	dc, cp := newTestCache(t, mp, func(o *Options) { o.MinSize = 0 })

	for i := 0; i < 3; i++ {
		_, err := dc.Parse([]byte(`[1,2]`), parser.EntryArray)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, cp.calls())
	assert.Equal(t, uint64(3), dc.Stats().Bypassed)
	assert.Empty(t, mp.m)
}

func TestInvalidate(t *testing.T) {
	mp := newMemProvider()
	dc, cp := newTestCache(t, mp, nil)

	_, err := dc.Parse([]byte(doc), parser.EntryObject)
	require.NoError(t, err)
	require.NoError(t, dc.Invalidate(context.Background(), []byte(doc)))
	_, err = dc.Parse([]byte(doc), parser.EntryObject)
	require.NoError(t, err)
	assert.Equal(t, 2, cp.calls())
}

type order struct {
	ID    string `json:"id"`
	Items []struct {
		SKU string `json:"sku"`
		Qty int    `json:"qty"`
	} `json:"items"`
	Note string `json:"note"`
}

func TestEngineOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rp, err := redis.New(redis.Config{
		Client:      goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
		CloseClient: true,
	})
	require.NoError(t, err)

	dc, cp := newTestCache(t, rp, func(o *Options) {
		o.Codec = c.MustCBOR[jsonvalue.Value](true)
		o.TTL = time.Minute
	})
	defer dc.Close(context.Background())
	en := typejson.New(typejson.Options{Parser: dc})

	for i := 0; i < 3; i++ {
		o, err := typejson.ParseWith[order](en, doc)
		require.NoError(t, err)
		assert.Equal(t, "o-1", o.ID)
		require.Len(t, o.Items, 2)
		assert.Equal(t, 2, o.Items[0].Qty)
	}
	assert.Equal(t, 1, cp.calls())
	assert.True(t, mr.Exists(dc.Key([]byte(doc))))
	assert.Equal(t, time.Minute, mr.TTL(dc.Key([]byte(doc))))
}

func TestRistrettoBackend(t *testing.T) {
	rp, err := ristretto.New(ristretto.Config{MaxCost: 1 << 20, SyncWrites: true})
	require.NoError(t, err)
	dc, cp := newTestCache(t, rp, nil)
	defer dc.Close(context.Background())

	for i := 0; i < 2; i++ {
		v, err := dc.Parse([]byte(doc), parser.EntryObject)
		require.NoError(t, err)
		assert.Equal(t, doc, v.String())
	}
	assert.Equal(t, 1, cp.calls())
}
