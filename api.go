package typejson

import (
	"fmt"
	"reflect"

	"github.com/unkn0wn-root/typejson/internal/sync"
	"github.com/unkn0wn-root/typejson/internal/util"
	"github.com/unkn0wn-root/typejson/jsonvalue"
	"github.com/unkn0wn-root/typejson/parser"
	"github.com/unkn0wn-root/typejson/parser/stdjson"
)

// Options configure an Engine. The zero value is usable.
type Options struct {
	Logger Logger        // if nil, NopLogger is used
	Hooks  Hooks         // if nil, NopHooks is used
	Parser parser.Parser // if nil, the encoding/json backed parser is used
}

// Engine owns a codec cache. It is safe for concurrent use; codecs are built
// on first use of a type and kept for the Engine's lifetime.
type Engine struct {
	cache  *codecCache
	parser parser.Parser
	log    Logger
	hooks  Hooks
}

func New(opts Options) *Engine {
	log := util.Coalesce[Logger](opts.Logger, NopLogger{})
	hooks := util.Coalesce[Hooks](opts.Hooks, NopHooks{})
	return &Engine{
		cache:  newCodecCache(log, hooks),
		parser: util.Coalesce[parser.Parser](opts.Parser, stdjson.New()),
		log:    log,
		hooks:  hooks,
	}
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide Engine used by the package-level
// functions.
func Default() *Engine {
	defaultOnce.Do(func() { defaultEngine = New(Options{}) })
	return defaultEngine
}

// Stringify renders v as JSON text using the Default engine.
func Stringify(v any, opts ...StringifyOptions) (string, error) {
	return Default().Stringify(v, opts...)
}

func (en *Engine) Stringify(v any, opts ...StringifyOptions) (string, error) {
	b, err := en.Append(nil, v, opts...)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Append appends the JSON text of v to dst. On error dst is returned
// unchanged.
func (en *Engine) Append(dst []byte, v any, opts ...StringifyOptions) ([]byte, error) {
	if v == nil {
		return append(dst, "null"...), nil
	}
	var flags StringifyOptions
	for _, o := range opts {
		flags |= o
	}
	e := encodeState{buf: dst, opts: flags}
	rv := reflect.ValueOf(v)
	en.cache.resolve(rv.Type()).encode(&e, rv)
	if e.err != nil {
		return dst, e.err
	}
	return e.buf, nil
}

// ToValue converts v into a tree, as Parse would see its JSON text.
func (en *Engine) ToValue(v any) (jsonvalue.Value, error) {
	if tv, ok := v.(jsonvalue.Value); ok {
		return tv, nil
	}
	b, err := en.Append(nil, v)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return en.parse(b)
}

// Strategy reports how values of type t are converted.
func (en *Engine) Strategy(t reflect.Type) Strategy {
	return en.cache.resolve(t).strategy
}

func (en *Engine) parse(data []byte) (jsonvalue.Value, error) {
	entry := parser.EntryFor(data)
	v, err := en.parser.Parse(data, entry)
	if err != nil {
		return jsonvalue.Value{}, &ParseError{Entry: entry, Err: err}
	}
	return v, nil
}

func (en *Engine) decode(in jsonvalue.Value, out reflect.Value) error {
	return en.cache.resolve(out.Type()).decode(in, out)
}

// Parse converts JSON text into a T using the Default engine.
func Parse[T any, S ~string | ~[]byte](text S) (T, error) {
	return ParseWith[T](Default(), text)
}

func ParseWith[T any, S ~string | ~[]byte](en *Engine, text S) (T, error) {
	var out T
	tree, err := en.parse([]byte(text))
	if err == nil {
		err = en.decode(tree, reflect.ValueOf(&out).Elem())
	}
	if err != nil {
		en.hooks.ParseFailed(reflect.TypeFor[T](), err)
		var zero T
		return zero, err
	}
	return out, nil
}

// TryParse is Parse without the error. It never panics; ok is false when the
// text does not parse or does not fit T.
func TryParse[T any, S ~string | ~[]byte](text S) (T, bool) {
	return TryParseWith[T](Default(), text)
}

func TryParseWith[T any, S ~string | ~[]byte](en *Engine, text S) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("typejson: recovered: %v", r)
			en.hooks.ParseFailed(reflect.TypeFor[T](), err)
			en.log.Debug("try parse failed", Fields{"type": reflect.TypeFor[T]().String(), "err": err})
			var zero T
			v, ok = zero, false
		}
	}()
	v, err := ParseWith[T](en, text)
	if err != nil {
		en.log.Debug("try parse failed", Fields{"type": reflect.TypeFor[T]().String(), "err": err})
		return v, false
	}
	return v, true
}

// Deserialize converts an already parsed tree into a T using the Default
// engine.
func Deserialize[T any](in jsonvalue.Value) (T, error) {
	return DeserializeWith[T](Default(), in)
}

func DeserializeWith[T any](en *Engine, in jsonvalue.Value) (T, error) {
	var out T
	if err := en.decode(in, reflect.ValueOf(&out).Elem()); err != nil {
		en.hooks.ParseFailed(reflect.TypeFor[T](), err)
		var zero T
		return zero, err
	}
	return out, nil
}
