package jsonvalue

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Interface converts v to plain Go values: nil, bool, int64, uint64,
// float64, string, []any and map[string]any. Integral numbers that fit an
// int64 (or uint64) are returned as such, everything else as float64.
// Object member order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return numberInterface(v.s)
	case String:
		return v.s
	case Array:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, v.Len())
		for k, mv := range v.Members() {
			out[k] = mv.Interface()
		}
		return out
	}
	return nil
}

func numberInterface(lit string) any {
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
		return u
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	return f
}

// FromInterface is the inverse of Interface. It also accepts the shapes other
// decoders produce: json.Number, the sized integer and float types, []byte
// (as a string), and map[any]any with keys formatted by fmt. Keys of
// unordered maps are sorted so the result is deterministic.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case []byte:
		return NewString(string(t)), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case int:
		return NewInt(int64(t)), nil
	case int8:
		return NewInt(int64(t)), nil
	case int16:
		return NewInt(int64(t)), nil
	case int32:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case uint:
		return NewUint(uint64(t)), nil
	case uint8:
		return NewUint(uint64(t)), nil
	case uint16:
		return NewUint(uint64(t)), nil
	case uint32:
		return NewUint(uint64(t)), nil
	case uint64:
		return NewUint(t), nil
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return Value{}, fmt.Errorf("jsonvalue: unsupported float %v", t)
		}
		return Value{kind: Number, s: string(AppendFloat(nil, float64(t), 32))}, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Value{}, fmt.Errorf("jsonvalue: unsupported float %v", t)
		}
		return NewFloat(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return NewArray(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b := NewObjectBuilder(len(keys))
		for _, k := range keys {
			v, err := FromInterface(t[k])
			if err != nil {
				return Value{}, err
			}
			b.Set(k, v)
		}
		return b.Build(), nil
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = e
		}
		return FromInterface(m)
	}
	return Value{}, fmt.Errorf("jsonvalue: unsupported type %T", x)
}
