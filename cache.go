package typejson

import (
	"reflect"
	"sync/atomic"

	"github.com/unkn0wn-root/typejson/internal/sync"
	"github.com/unkn0wn-root/typejson/jsonvalue"
)

type encoderFunc func(e *encodeState, v reflect.Value)

// decoderFunc stores the conversion of in into out, which is settable.
type decoderFunc func(in jsonvalue.Value, out reflect.Value) error

// codec is the serializer/deserializer pair for one type. Immutable once
// published.
type codec struct {
	typ      reflect.Type
	strategy Strategy
	encode   encoderFunc
	decode   decoderFunc
}

// codecCache holds one published codec per type.
type codecCache struct {
	mu     sync.RWMutex
	codecs map[reflect.Type]*codec

	log   Logger
	hooks Hooks
}

func newCodecCache(log Logger, hooks Hooks) *codecCache {
	return &codecCache{
		codecs: make(map[reflect.Type]*codec),
		log:    log,
		hooks:  hooks,
	}
}

func (c *codecCache) lookup(t reflect.Type) *codec {
	c.mu.RLock()
	cd := c.codecs[t]
	c.mu.RUnlock()
	return cd
}

// resolve returns the codec for t, building it (and anything it needs) on
// first use. Builds run without the lock, so concurrent first use may build
// twice; publish keeps the first.
func (c *codecCache) resolve(t reflect.Type) *codec {
	if cd := c.lookup(t); cd != nil {
		return cd
	}
	b := &builder{cache: c, pending: make(map[reflect.Type]*slot)}
	return b.resolve(t)
}

// publish commits cd unless another builder got there first, in which case
// the winner is returned and cd is dropped.
func (c *codecCache) publish(cd *codec) *codec {
	c.mu.Lock()
	if won, ok := c.codecs[cd.typ]; ok {
		c.mu.Unlock()
		c.hooks.CodecRace(cd.typ)
		return won
	}
	c.codecs[cd.typ] = cd
	c.mu.Unlock()

	c.log.Debug("codec built", Fields{"type": cd.typ.String(), "strategy": cd.strategy.String()})
	c.hooks.CodecBuilt(cd.typ, cd.strategy)
	return cd
}

func (c *codecCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.codecs)
}

// slot tracks a type whose codec is under construction on the current
// builder's stack. Recursive references get the slot's placeholder.
type slot struct {
	typ         reflect.Type
	cache       *codecCache
	ready       atomic.Pointer[codec]
	placeholder *codec
}

func newSlot(c *codecCache, t reflect.Type) *slot {
	s := &slot{typ: t, cache: c}
	s.placeholder = &codec{
		typ:      t,
		strategy: classify(t),
		encode: func(e *encodeState, v reflect.Value) {
			s.target().encode(e, v)
		},
		decode: func(in jsonvalue.Value, out reflect.Value) error {
			return s.target().decode(in, out)
		},
	}
	return s
}

// target is the finished codec behind the placeholder. The owning builder
// fixes the slot up as soon as it publishes; until then a caller that got
// hold of the placeholder through another published codec resolves t from
// the cache. Either store writes the same published codec.
func (s *slot) target() *codec {
	if cd := s.ready.Load(); cd != nil {
		return cd
	}
	cd := s.cache.resolve(s.typ)
	s.ready.Store(cd)
	s.cache.log.Debug("placeholder resolved", Fields{"type": s.typ.String()})
	s.cache.hooks.PlaceholderResolved(s.typ)
	return cd
}

// builder resolves one type graph. It is confined to a single goroutine.
type builder struct {
	cache   *codecCache
	pending map[reflect.Type]*slot
}

func (b *builder) resolve(t reflect.Type) *codec {
	if cd := b.cache.lookup(t); cd != nil {
		return cd
	}
	if s, ok := b.pending[t]; ok {
		return s.placeholder
	}
	s := newSlot(b.cache, t)
	b.pending[t] = s
	cd := b.cache.publish(b.build(t))
	s.ready.Store(cd)
	delete(b.pending, t)
	return cd
}

func (b *builder) build(t reflect.Type) *codec {
	cd := &codec{typ: t, strategy: classify(t)}
	switch cd.strategy {
	case StrategyString:
		cd.encode, cd.decode = encodeString, decodeString
	case StrategyPrimitive:
		cd.encode, cd.decode = primitiveEncoder(t), primitiveDecoder(t)
	case StrategyDateTime:
		cd.encode, cd.decode = encodeTime, decodeTime
	case StrategyPassthrough:
		cd.encode, cd.decode = encodeTree, decodeTree
	case StrategyMap:
		b.buildMap(cd)
	case StrategyFixedArray, StrategyDynamicList:
		elem := b.resolve(t.Elem())
		cd.encode = sequenceEncoder(elem)
		if cd.strategy == StrategyFixedArray {
			cd.decode = arrayDecoder(t, elem)
		} else {
			cd.decode = sliceDecoder(t, elem)
		}
	case StrategyNullableWrapper:
		elem := b.resolve(t.Elem())
		cd.encode, cd.decode = pointerEncoder(elem), pointerDecoder(t, elem)
	case StrategySealedObject:
		fields := fieldsOf(t)
		members := make([]member, len(fields))
		for i, f := range fields {
			members[i] = newMember(f, b.resolve(f.typ))
		}
		cd.encode, cd.decode = objectEncoder(members), objectDecoder(t, members)
	case StrategyOpenObject, StrategyUntypedDynamic:
		cd.encode, cd.decode = dynamicEncoder(b.cache), dynamicDecoder(t)
	default:
		cd.encode, cd.decode = unsupportedEncoder(t), unsupportedDecoder(t)
	}
	return cd
}

func (b *builder) buildMap(cd *codec) {
	t := cd.typ
	elem := b.resolve(t.Elem())
	cd.encode = mapEncoder(keyTextFunc(t.Key()), elem)
	cd.decode = mapDecoder(t, keyParseFunc(t.Key()), elem)
}
