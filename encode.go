package typejson

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/unkn0wn-root/typejson/jsonvalue"
)

// StringifyOptions are bit flags for Stringify and Append.
type StringifyOptions uint8

const (
	// LowerCamelCase lower-cases the first letter of every struct member key
	// on output. Map keys are written as they are.
	LowerCamelCase StringifyOptions = 1 << iota
)

// TimeLayout is the DateTime wire format. Times are written in UTC.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Past this nesting depth, pointers, maps and slices are checked for cycles.
const cycleCheckDepth = 1000

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

type encodeState struct {
	buf  []byte
	opts StringifyOptions
	err  error

	depth int
	seen  map[any]struct{}
}

// fail records the first error. Encoders keep appending after a failure; the
// buffer is discarded by the caller.
func (e *encodeState) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encodeState) null() {
	e.buf = append(e.buf, "null"...)
}

// close finishes a container of n items. Each item was followed by a ',';
// the last one is overwritten with the closer.
func (e *encodeState) close(n int, closer byte) {
	if n > 0 {
		e.buf[len(e.buf)-1] = closer
		return
	}
	e.buf = append(e.buf, closer)
}

type cycleKey struct {
	ptr unsafe.Pointer
	len int
}

// visit runs fn with v on the current path.
func (e *encodeState) visit(v reflect.Value, fn func()) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > cycleCheckDepth {
		key := cycleKey{ptr: v.UnsafePointer()}
		if v.Kind() == reflect.Slice {
			key.len = v.Len()
		}
		if _, ok := e.seen[key]; ok {
			e.fail(&UnsupportedValueError{Value: v.Type().String(), Msg: "encountered a cycle"})
			return
		}
		if e.seen == nil {
			e.seen = make(map[any]struct{})
		}
		e.seen[key] = struct{}{}
		defer delete(e.seen, key)
	}
	fn()
}

func encodeString(e *encodeState, v reflect.Value) {
	e.buf = jsonvalue.AppendString(e.buf, v.String())
}

func primitiveEncoder(t reflect.Type) encoderFunc {
	switch t.Kind() {
	case reflect.Bool:
		return func(e *encodeState, v reflect.Value) {
			e.buf = strconv.AppendBool(e.buf, v.Bool())
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(e *encodeState, v reflect.Value) {
			e.buf = strconv.AppendInt(e.buf, v.Int(), 10)
		}
	case reflect.Float32, reflect.Float64:
		bits := t.Bits()
		return func(e *encodeState, v reflect.Value) {
			f := v.Float()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				e.fail(&UnsupportedValueError{Value: strconv.FormatFloat(f, 'g', -1, bits), Msg: "no JSON representation"})
				e.null()
				return
			}
			e.buf = jsonvalue.AppendFloat(e.buf, f, bits)
		}
	}
	return func(e *encodeState, v reflect.Value) {
		e.buf = strconv.AppendUint(e.buf, v.Uint(), 10)
	}
}

func encodeTime(e *encodeState, v reflect.Value) {
	t := v.Interface().(time.Time)
	e.buf = append(e.buf, '"')
	e.buf = t.UTC().AppendFormat(e.buf, TimeLayout)
	e.buf = append(e.buf, '"')
}

func encodeTree(e *encodeState, v reflect.Value) {
	e.buf = v.Interface().(jsonvalue.Value).AppendJSON(e.buf)
}

// sequenceEncoder writes arrays and slices.
func sequenceEncoder(elem *codec) encoderFunc {
	return func(e *encodeState, v reflect.Value) {
		if v.Kind() == reflect.Slice {
			if v.IsNil() {
				e.null()
				return
			}
			e.visit(v, func() { writeSequence(e, v, elem) })
			return
		}
		writeSequence(e, v, elem)
	}
}

func writeSequence(e *encodeState, v reflect.Value, elem *codec) {
	e.buf = append(e.buf, '[')
	n := v.Len()
	for i := 0; i < n && e.err == nil; i++ {
		elem.encode(e, v.Index(i))
		e.buf = append(e.buf, ',')
	}
	e.close(n, ']')
}

func pointerEncoder(elem *codec) encoderFunc {
	return func(e *encodeState, v reflect.Value) {
		if v.IsNil() {
			e.null()
			return
		}
		e.visit(v, func() { elem.encode(e, v.Elem()) })
	}
}

func objectEncoder(members []member) encoderFunc {
	return func(e *encodeState, v reflect.Value) {
		lower := e.opts&LowerCamelCase != 0
		e.buf = append(e.buf, '{')
		n := 0
		for i := range members {
			m := &members[i]
			fv, ok := m.value(v)
			if !ok {
				// promoted through a nil embedded pointer
				continue
			}
			if lower {
				e.buf = append(e.buf, m.lowerPrefix...)
			} else {
				e.buf = append(e.buf, m.prefix...)
			}
			m.codec.encode(e, fv)
			e.buf = append(e.buf, ',')
			n++
			if e.err != nil {
				return
			}
		}
		e.close(n, '}')
	}
}

type mapEntry struct {
	key string
	val reflect.Value
}

// mapEncoder writes entries sorted by key text so equal maps render equal.
func mapEncoder(keyText func(reflect.Value) (string, error), elem *codec) encoderFunc {
	return func(e *encodeState, v reflect.Value) {
		if v.IsNil() {
			e.null()
			return
		}
		e.visit(v, func() {
			entries := make([]mapEntry, 0, v.Len())
			it := v.MapRange()
			for it.Next() {
				k, err := keyText(it.Key())
				if err != nil {
					e.fail(err)
					return
				}
				entries = append(entries, mapEntry{key: k, val: it.Value()})
			}
			slices.SortFunc(entries, func(a, b mapEntry) int { return strings.Compare(a.key, b.key) })

			e.buf = append(e.buf, '{')
			for _, en := range entries {
				e.buf = jsonvalue.AppendString(e.buf, en.key)
				e.buf = append(e.buf, ':')
				elem.encode(e, en.val)
				e.buf = append(e.buf, ',')
				if e.err != nil {
					return
				}
			}
			e.close(len(entries), '}')
		})
	}
}

// keyTextFunc coerces map keys of type t to text.
func keyTextFunc(t reflect.Type) func(reflect.Value) (string, error) {
	if t.Kind() == reflect.String {
		return func(k reflect.Value) (string, error) { return k.String(), nil }
	}
	if t.Implements(textMarshalerType) {
		return func(k reflect.Value) (string, error) {
			if k.Kind() == reflect.Pointer && k.IsNil() {
				return "", nil
			}
			b, err := k.Interface().(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return "", fmt.Errorf("typejson: map key %s: %w", t, err)
			}
			return string(b), nil
		}
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(k reflect.Value) (string, error) { return strconv.FormatInt(k.Int(), 10), nil }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(k reflect.Value) (string, error) { return strconv.FormatUint(k.Uint(), 10), nil }
	case reflect.Float32, reflect.Float64:
		return func(k reflect.Value) (string, error) { return strconv.FormatFloat(k.Float(), 'g', -1, t.Bits()), nil }
	case reflect.Bool:
		return func(k reflect.Value) (string, error) { return strconv.FormatBool(k.Bool()), nil }
	}
	return func(k reflect.Value) (string, error) { return fmt.Sprint(k.Interface()), nil }
}

// dynamicEncoder dispatches on the runtime type of an interface value.
func dynamicEncoder(c *codecCache) encoderFunc {
	return func(e *encodeState, v reflect.Value) {
		if v.IsNil() {
			e.null()
			return
		}
		inner := v.Elem()
		c.resolve(inner.Type()).encode(e, inner)
	}
}

func unsupportedEncoder(t reflect.Type) encoderFunc {
	return func(e *encodeState, _ reflect.Value) {
		e.fail(&UnsupportedTypeError{Type: t})
		e.null()
	}
}
