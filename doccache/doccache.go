// Package doccache memoizes parsed JSON documents in a byte Provider.
//
// A Cache is a parser.Parser: put it in front of any backend and hand it to
// typejson.New as Options.Parser. Repeated documents (same bytes) are served
// from the provider instead of being parsed again, which pays off for large
// documents shared across replicas through Redis.
//
// Keys:
//
//	doc:<ns>:<xxhash64 of the text, 16 hex chars>
//
// Entries are framed by internal/wire and validated on read: the frame holds
// the source length and a SHA-256 digest of the text, so two texts sharing a
// key hash never share a tree. An entry that fails validation or decoding is
// deleted and the text is parsed afresh.
// Provider errors never fail a parse.
//
// A hit returns the same tree as the miss that stored it only if the codec
// keeps member order and number literals. The default MessagePack codec
// does; CBOR and protobuf do not.
package doccache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/typejson"
	c "github.com/unkn0wn-root/typejson/codec"
	"github.com/unkn0wn-root/typejson/internal/util"
	"github.com/unkn0wn-root/typejson/internal/wire"
	"github.com/unkn0wn-root/typejson/jsonvalue"
	"github.com/unkn0wn-root/typejson/parser"
	"github.com/unkn0wn-root/typejson/parser/stdjson"
	pr "github.com/unkn0wn-root/typejson/provider"
)

const (
	defaultTTL     = 10 * time.Minute
	defaultMinSize = 64
	defaultTimeout = 50 * time.Millisecond
)

var (
	ErrNilProvider = errors.New("doccache: nil provider")
	ErrNoNamespace = errors.New("doccache: empty namespace")
)

// Options tune the document cache.
// Only Namespace and Provider are required; others have sensible defaults.
type Options struct {
	// Required
	Namespace string // logical namespace to avoid collisions. e.g. "orders", "catalog"
	Provider  pr.Provider

	Parser   parser.Parser            // nil => encoding/json backed parser
	Codec    c.Codec[jsonvalue.Value] // nil => MessagePack
	Logger   typejson.Logger          // if nil, NopLogger is used
	Hooks    typejson.Hooks           // if nil, NopHooks is used
	TTL      time.Duration            // 0 => 10m
	MinSize  int                      // shorter documents bypass the cache; 0 => 64 bytes, <0 => cache all
	Timeout  time.Duration            // per provider call; 0 => 50ms
	Disabled bool                     // default false (enabled)
}

// Stats are cumulative counters since New.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Bypassed  uint64 // below MinSize or disabled
	SelfHeals uint64
}

type Cache struct {
	prefix   string
	provider pr.Provider
	inner    parser.Parser
	codec    c.Codec[jsonvalue.Value]
	log      typejson.Logger
	hooks    typejson.Hooks
	ttl      time.Duration
	minSize  int
	timeout  time.Duration
	enabled  bool

	hits, misses, bypassed, selfHeals atomic.Uint64
}

var _ parser.Parser = (*Cache)(nil)

func New(opts Options) (*Cache, error) {
	if opts.Namespace == "" {
		return nil, ErrNoNamespace
	}
	if opts.Provider == nil {
		return nil, ErrNilProvider
	}
	minSize := opts.MinSize
	switch {
	case minSize == 0:
		minSize = defaultMinSize
	case minSize < 0:
		minSize = 0
	}
	return &Cache{
		prefix:   "doc:" + opts.Namespace,
		provider: opts.Provider,
		inner:    util.Coalesce[parser.Parser](opts.Parser, stdjson.New()),
		codec:    util.Coalesce[c.Codec[jsonvalue.Value]](opts.Codec, c.Msgpack[jsonvalue.Value]{}),
		log:      util.Coalesce[typejson.Logger](opts.Logger, typejson.NopLogger{}),
		hooks:    util.Coalesce[typejson.Hooks](opts.Hooks, typejson.NopHooks{}),
		ttl:      util.Coalesce(opts.TTL, defaultTTL),
		minSize:  minSize,
		timeout:  util.Coalesce(opts.Timeout, defaultTimeout),
		enabled:  !opts.Disabled,
	}, nil
}

func (dc *Cache) Enabled() bool { return dc.enabled }

func (dc *Cache) Stats() Stats {
	return Stats{
		Hits:      dc.hits.Load(),
		Misses:    dc.misses.Load(),
		Bypassed:  dc.bypassed.Load(),
		SelfHeals: dc.selfHeals.Load(),
	}
}

// Key returns the storage key data is cached under.
func (dc *Cache) Key(data []byte) string {
	return util.DocKey(dc.prefix, data)
}

// Parse returns the cached tree for data, or parses it with the inner parser
// and stores the result. Parse failures are not cached.
func (dc *Cache) Parse(data []byte, entry parser.Entry) (jsonvalue.Value, error) {
	if !dc.enabled || len(data) < dc.minSize {
		dc.bypassed.Add(1)
		return dc.inner.Parse(data, entry)
	}
	k := dc.Key(data)
	sum := wire.SourceSum(data)
	if v, ok := dc.lookup(k, len(data), sum, entry); ok {
		dc.hits.Add(1)
		return v, nil
	}
	dc.misses.Add(1)

	v, err := dc.inner.Parse(data, entry)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	dc.store(k, len(data), sum, entry, v)
	return v, nil
}

func (dc *Cache) lookup(k string, srcLen int, sum [wire.SumLen]byte, entry parser.Entry) (jsonvalue.Value, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), dc.timeout)
	defer cancel()

	raw, ok, err := dc.provider.Get(ctx, k)
	if err != nil {
		dc.log.Warn("document cache get failed", typejson.Fields{"key": k, "err": err})
		dc.hooks.ProviderError("get", k, err)
		return jsonvalue.Value{}, false
	}
	if !ok {
		return jsonvalue.Value{}, false
	}
	doc, err := wire.DecodeDocument(raw)
	if err != nil {
		dc.selfHeal(ctx, k, "corrupt frame")
		return jsonvalue.Value{}, false
	}
	if int(doc.SourceLen) != srcLen {
		// same hash, different text
		dc.selfHeal(ctx, k, "source length mismatch")
		return jsonvalue.Value{}, false
	}
	if doc.SourceSum != sum {
		dc.selfHeal(ctx, k, "source digest mismatch")
		return jsonvalue.Value{}, false
	}
	if doc.Entry != byte(entry) {
		// parsed under another entry point; the store that follows overwrites it
		return jsonvalue.Value{}, false
	}
	v, err := dc.codec.Decode(doc.Payload)
	if err != nil {
		dc.selfHeal(ctx, k, "decode failed")
		return jsonvalue.Value{}, false
	}
	return v, true
}

func (dc *Cache) store(k string, srcLen int, sum [wire.SumLen]byte, entry parser.Entry, v jsonvalue.Value) {
	payload, err := dc.codec.Encode(v)
	if err != nil {
		dc.log.Warn("document cache encode failed", typejson.Fields{"key": k, "err": err})
		return
	}
	frame := wire.EncodeDocument(byte(entry), srcLen, sum, payload)

	ctx, cancel := context.WithTimeout(context.Background(), dc.timeout)
	defer cancel()
	ok, err := dc.provider.Set(ctx, k, frame, int64(len(frame)), dc.ttl)
	if err != nil {
		dc.log.Warn("document cache set failed", typejson.Fields{"key": k, "err": err})
		dc.hooks.ProviderError("set", k, err)
		return
	}
	if !ok {
		dc.log.Debug("document cache set rejected by provider (pressure)", typejson.Fields{"key": k})
		dc.hooks.ProviderSetRejected(k)
	}
}

func (dc *Cache) selfHeal(ctx context.Context, k, reason string) {
	dc.selfHeals.Add(1)
	dc.log.Debug("document cache self-heal", typejson.Fields{"key": k, "reason": reason})
	dc.hooks.SelfHeal(k, reason)
	if err := dc.provider.Del(ctx, k); err != nil {
		dc.hooks.ProviderError("del", k, err)
	}
}

// Invalidate drops the cached tree of data, if any.
func (dc *Cache) Invalidate(ctx context.Context, data []byte) error {
	return dc.provider.Del(ctx, dc.Key(data))
}

// Close closes the provider.
func (dc *Cache) Close(ctx context.Context) error {
	return dc.provider.Close(ctx)
}
