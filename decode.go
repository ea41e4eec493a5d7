package typejson

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/unkn0wn-root/typejson/jsonvalue"
)

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// Layouts accepted for DateTime values, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func decodeString(in jsonvalue.Value, out reflect.Value) error {
	if in.IsNull() {
		out.SetString("")
		return nil
	}
	s, ok := in.Text()
	if !ok {
		return mismatch(out.Type(), in, "expected string")
	}
	out.SetString(s)
	return nil
}

func primitiveDecoder(t reflect.Type) decoderFunc {
	switch t.Kind() {
	case reflect.Bool:
		return func(in jsonvalue.Value, out reflect.Value) error {
			if in.IsNull() {
				out.SetBool(false)
				return nil
			}
			b, ok := in.Bool()
			if !ok {
				return mismatch(t, in, "expected bool")
			}
			out.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(in jsonvalue.Value, out reflect.Value) error {
			if in.IsNull() {
				out.SetInt(0)
				return nil
			}
			i, err := in.Int64()
			if err != nil {
				return convFailed(t, in, err)
			}
			if out.OverflowInt(i) {
				return mismatch(t, in, "value "+strconv.FormatInt(i, 10)+" out of range")
			}
			out.SetInt(i)
			return nil
		}
	case reflect.Float32, reflect.Float64:
		bits := t.Bits()
		return func(in jsonvalue.Value, out reflect.Value) error {
			if in.IsNull() {
				out.SetFloat(0)
				return nil
			}
			lit, ok := in.Literal()
			if !ok {
				return mismatch(t, in, "expected number")
			}
			f, err := strconv.ParseFloat(lit, bits)
			if err != nil {
				return convFailed(t, in, err)
			}
			out.SetFloat(f)
			return nil
		}
	}
	return func(in jsonvalue.Value, out reflect.Value) error {
		if in.IsNull() {
			out.SetUint(0)
			return nil
		}
		u, err := in.Uint64()
		if err != nil {
			return convFailed(t, in, err)
		}
		if out.OverflowUint(u) {
			return mismatch(t, in, "value "+strconv.FormatUint(u, 10)+" out of range")
		}
		out.SetUint(u)
		return nil
	}
}

// decodeTime maps null to the zero time instead of failing. This does not
// round-trip: the zero time is written back as "0001-01-01T00:00:00.000Z".
func decodeTime(in jsonvalue.Value, out reflect.Value) error {
	if in.IsNull() {
		out.Set(reflect.ValueOf(time.Time{}))
		return nil
	}
	s, ok := in.Text()
	if !ok {
		return mismatch(timeType, in, "expected timestamp string")
	}
	var err error
	for _, layout := range timeLayouts {
		t, perr := time.Parse(layout, s)
		if perr == nil {
			out.Set(reflect.ValueOf(t))
			return nil
		}
		if err == nil {
			err = perr
		}
	}
	return convFailed(timeType, in, err)
}

func decodeTree(in jsonvalue.Value, out reflect.Value) error {
	out.Set(reflect.ValueOf(in))
	return nil
}

func arrayDecoder(t reflect.Type, elem *codec) decoderFunc {
	return func(in jsonvalue.Value, out reflect.Value) error {
		if in.IsNull() {
			out.SetZero()
			return nil
		}
		if in.Kind() != jsonvalue.Array {
			return mismatch(t, in, "expected array")
		}
		if in.Len() != t.Len() {
			return mismatch(t, in, fmt.Sprintf("expected %d elements, got %d", t.Len(), in.Len()))
		}
		for i, item := range in.Elements() {
			if err := elem.decode(item, out.Index(i)); err != nil {
				return atPath(err, "["+strconv.Itoa(i)+"]")
			}
		}
		return nil
	}
}

func sliceDecoder(t reflect.Type, elem *codec) decoderFunc {
	return func(in jsonvalue.Value, out reflect.Value) error {
		if in.IsNull() {
			out.SetZero()
			return nil
		}
		if in.Kind() != jsonvalue.Array {
			return mismatch(t, in, "expected array")
		}
		n := in.Len()
		s := reflect.MakeSlice(t, n, n)
		for i, item := range in.Elements() {
			if err := elem.decode(item, s.Index(i)); err != nil {
				return atPath(err, "["+strconv.Itoa(i)+"]")
			}
		}
		out.Set(s)
		return nil
	}
}

func pointerDecoder(t reflect.Type, elem *codec) decoderFunc {
	return func(in jsonvalue.Value, out reflect.Value) error {
		if in.IsNull() {
			out.SetZero()
			return nil
		}
		p := reflect.New(t.Elem())
		if err := elem.decode(in, p.Elem()); err != nil {
			return err
		}
		out.Set(p)
		return nil
	}
}

// objectDecoder fills members found in the input. A missing key leaves the
// member at its zero value; unknown keys are ignored.
func objectDecoder(t reflect.Type, members []member) decoderFunc {
	return func(in jsonvalue.Value, out reflect.Value) error {
		if in.IsNull() {
			out.SetZero()
			return nil
		}
		if in.Kind() != jsonvalue.Object {
			return mismatch(t, in, "expected object")
		}
		for i := range members {
			m := &members[i]
			v, ok := in.Get(m.key)
			if !ok && m.fallbackKey != "" {
				v, ok = in.Get(m.fallbackKey)
			}
			if !ok {
				continue
			}
			if err := m.codec.decode(v, m.settable(out)); err != nil {
				return atPath(err, "."+m.key)
			}
		}
		return nil
	}
}

func mapDecoder(t reflect.Type, keyParse func(string) (reflect.Value, error), elem *codec) decoderFunc {
	return func(in jsonvalue.Value, out reflect.Value) error {
		if in.IsNull() {
			out.SetZero()
			return nil
		}
		if in.Kind() != jsonvalue.Object {
			return mismatch(t, in, "expected object")
		}
		m := reflect.MakeMapWithSize(t, in.Len())
		for k, v := range in.Members() {
			kv, err := keyParse(k)
			if err != nil {
				return atPath(convFailed(t, in, err), "["+strconv.Quote(k)+"]")
			}
			ev := reflect.New(t.Elem()).Elem()
			if err := elem.decode(v, ev); err != nil {
				return atPath(err, "["+strconv.Quote(k)+"]")
			}
			m.SetMapIndex(kv, ev)
		}
		out.Set(m)
		return nil
	}
}

// keyParseFunc converts object keys back into map keys of type t.
func keyParseFunc(t reflect.Type) func(string) (reflect.Value, error) {
	if t.Kind() == reflect.String {
		return func(s string) (reflect.Value, error) {
			return reflect.ValueOf(s).Convert(t), nil
		}
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return func(s string) (reflect.Value, error) {
			kv := reflect.New(t)
			if err := kv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return reflect.Value{}, err
			}
			return kv.Elem(), nil
		}
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(s string) (reflect.Value, error) {
			i, err := strconv.ParseInt(s, 10, t.Bits())
			if err != nil {
				return reflect.Value{}, err
			}
			kv := reflect.New(t).Elem()
			kv.SetInt(i)
			return kv, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(s string) (reflect.Value, error) {
			u, err := strconv.ParseUint(s, 10, t.Bits())
			if err != nil {
				return reflect.Value{}, err
			}
			kv := reflect.New(t).Elem()
			kv.SetUint(u)
			return kv, nil
		}
	case reflect.Float32, reflect.Float64:
		return func(s string) (reflect.Value, error) {
			f, err := strconv.ParseFloat(s, t.Bits())
			if err != nil {
				return reflect.Value{}, err
			}
			kv := reflect.New(t).Elem()
			kv.SetFloat(f)
			return kv, nil
		}
	case reflect.Bool:
		return func(s string) (reflect.Value, error) {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b).Convert(t), nil
		}
	}
	return func(string) (reflect.Value, error) {
		return reflect.Value{}, &UnsupportedTypeError{Type: t}
	}
}

// dynamicDecoder serves interface targets. There is no type information in
// the input to pick a concrete type, so the raw tree is stored when the
// interface admits it.
func dynamicDecoder(t reflect.Type) decoderFunc {
	admits := valueType.Implements(t)
	return func(in jsonvalue.Value, out reflect.Value) error {
		if in.IsNull() {
			out.SetZero()
			return nil
		}
		if !admits {
			return mismatch(t, in, "no concrete type to decode into")
		}
		out.Set(reflect.ValueOf(in))
		return nil
	}
}

func unsupportedDecoder(t reflect.Type) decoderFunc {
	return func(jsonvalue.Value, reflect.Value) error {
		return &UnsupportedTypeError{Type: t}
	}
}
