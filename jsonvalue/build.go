package jsonvalue

import (
	"math"
	"strconv"
)

func NewNull() Value { return Value{} }

func NewBool(b bool) Value { return Value{kind: Bool, b: b} }

func NewString(s string) Value { return Value{kind: String, s: s} }

// NewNumber wraps a number literal as written in JSON source. The literal is
// not validated; parsers hand over what their lexer accepted.
func NewNumber(lit string) Value { return Value{kind: Number, s: lit} }

func NewInt(i int64) Value { return Value{kind: Number, s: strconv.FormatInt(i, 10)} }
func NewUint(u uint64) Value { return Value{kind: Number, s: strconv.FormatUint(u, 10)} }

// NewFloat formats f the way the serializer formats float64 fields.
// NaN and infinities have no JSON form and become null.
func NewFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: Number, s: string(AppendFloat(nil, f, 64))}
}

// NewArray builds an Array. The slice is retained, not copied.
func NewArray(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Array, arr: items}
}

// NewObject builds an Object from members in order. A repeated key keeps the
// position of its first occurrence and the value of its last.
func NewObject(members ...Member) Value {
	b := NewObjectBuilder(len(members))
	for _, m := range members {
		b.Set(m.Key, m.Value)
	}
	return b.Build()
}

// ObjectBuilder accumulates object members for parsers. It must not be used
// after Build.
type ObjectBuilder struct {
	o *object
}

func NewObjectBuilder(sizeHint int) *ObjectBuilder {
	return &ObjectBuilder{o: &object{
		keys:  make([]string, 0, sizeHint),
		vals:  make([]Value, 0, sizeHint),
		index: make(map[string]int, sizeHint),
	}}
}

func (b *ObjectBuilder) Set(key string, v Value) {
	if i, ok := b.o.index[key]; ok {
		b.o.vals[i] = v
		return
	}
	b.o.index[key] = len(b.o.keys)
	b.o.keys = append(b.o.keys, key)
	b.o.vals = append(b.o.vals, v)
}

func (b *ObjectBuilder) Build() Value {
	v := Value{kind: Object, obj: b.o}
	b.o = nil
	return v
}

// AppendFloat formats like encoding/json: shortest representation, exponent
// form only for very small or very large magnitudes.
func AppendFloat(dst []byte, f float64, bits int) []byte {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	dst = strconv.AppendFloat(dst, f, format, -1, bits)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst
}
