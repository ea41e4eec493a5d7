// Package jsonvalue is the abstract JSON tree produced by parsers and consumed
// by the typejson deserializer.
//
// A Value is immutable once built. The zero Value is a JSON null, so a Value
// field that was never populated still renders and compares as null.
package jsonvalue

import (
	"iter"
	"strconv"
)

// Kind is the JSON type of a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "<invalid>"
}

// Value is one node of a parsed JSON document.
type Value struct {
	kind Kind
	b    bool
	s    string // string payload or number literal
	arr  []Value
	obj  *object
}

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

type object struct {
	keys  []string
	vals  []Value
	index map[string]int
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the payload of a Bool node.
func (v Value) Bool() (b bool, ok bool) {
	return v.b, v.kind == Bool
}

// Text returns the payload of a String node.
func (v Value) Text() (s string, ok bool) {
	if v.kind != String {
		return "", false
	}
	return v.s, true
}

// Literal returns the source text of a Number node, e.g. "1234.5".
func (v Value) Literal() (lit string, ok bool) {
	if v.kind != Number {
		return "", false
	}
	return v.s, true
}

// Float64 parses a Number node.
func (v Value) Float64() (float64, error) {
	if v.kind != Number {
		return 0, &KindError{Want: Number, Got: v.kind}
	}
	return strconv.ParseFloat(v.s, 64)
}

// Int64 parses a Number node as a signed integer. A fractional or exponent
// literal is truncated toward zero, so "1234.5" yields 1234.
func (v Value) Int64() (int64, error) {
	if v.kind != Number {
		return 0, &KindError{Want: Number, Got: v.kind}
	}
	i, err := strconv.ParseInt(v.s, 10, 64)
	if err == nil {
		return i, nil
	}
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return 0, err
	}
	f, ferr := strconv.ParseFloat(v.s, 64)
	if ferr != nil {
		return 0, ferr
	}
	if f < -9223372036854775808 || f >= 9223372036854775808 {
		return 0, &strconv.NumError{Func: "ParseInt", Num: v.s, Err: strconv.ErrRange}
	}
	return int64(f), nil
}

// Uint64 is Int64 for unsigned targets. Negative values are out of range.
func (v Value) Uint64() (uint64, error) {
	if v.kind != Number {
		return 0, &KindError{Want: Number, Got: v.kind}
	}
	u, err := strconv.ParseUint(v.s, 10, 64)
	if err == nil {
		return u, nil
	}
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return 0, err
	}
	f, ferr := strconv.ParseFloat(v.s, 64)
	if ferr != nil {
		return 0, ferr
	}
	if f <= -1 || f >= 18446744073709551616 {
		return 0, &strconv.NumError{Func: "ParseUint", Num: v.s, Err: strconv.ErrRange}
	}
	return uint64(f), nil
}

// Len is the number of elements of an Array or members of an Object, else 0.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		if v.obj == nil {
			return 0
		}
		return len(v.obj.keys)
	}
	return 0
}

// Index returns the i-th element of an Array. It panics when out of range,
// like a slice index.
func (v Value) Index(i int) Value {
	return v.arr[i]
}

// Elements iterates an Array in order.
func (v Value) Elements() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, e := range v.arr {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Get looks up an Object member by exact key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object || v.obj == nil {
		return Value{}, false
	}
	i, ok := v.obj.index[key]
	if !ok {
		return Value{}, false
	}
	return v.obj.vals[i], true
}

// Members iterates an Object in document order.
func (v Value) Members() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if v.kind != Object || v.obj == nil {
			return
		}
		for i, k := range v.obj.keys {
			if !yield(k, v.obj.vals[i]) {
				return
			}
		}
	}
}

// Equal reports deep equality. Object member order is ignored, number
// literals are compared as written.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number, String:
		return v.s == o.s
	case Array:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if v.Len() != o.Len() {
			return false
		}
		for k, mv := range v.Members() {
			ov, ok := o.Get(k)
			if !ok || !mv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// KindError reports an accessor used on the wrong kind of node.
type KindError struct {
	Want Kind
	Got  Kind
}

func (e *KindError) Error() string {
	return "jsonvalue: expected " + e.Want.String() + ", got " + e.Got.String()
}
