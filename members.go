package typejson

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/unkn0wn-root/typejson/jsonvalue"
)

// field is one serializable struct member as reported by reflection.
type field struct {
	name     string // Go field name
	key      string // JSON key
	explicit bool   // key came from a json tag
	index    []int
	typ      reflect.Type
	indirect bool // index passes through an embedded struct pointer
}

// value returns the field of struct v, or false when an embedded pointer on
// the way is nil.
func (f *field) value(v reflect.Value) (reflect.Value, bool) {
	if !f.indirect {
		return v.FieldByIndex(f.index), true
	}
	for i, x := range f.index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// settable returns the field of struct v, allocating nil embedded pointers.
func (f *field) settable(v reflect.Value) reflect.Value {
	if !f.indirect {
		return v.FieldByIndex(f.index)
	}
	for i, x := range f.index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

// member binds a field to its codec.
type member struct {
	field
	fallbackKey string // lookup retried with this key on decode; "" when disabled
	codec       *codec

	// quoted `"key":` prefixes, as written and with LowerCamelCase
	prefix      []byte
	lowerPrefix []byte
}

func newMember(f field, c *codec) member {
	lower := lowerFirst(f.key)
	m := member{
		field:       f,
		codec:       c,
		prefix:      append(jsonvalue.AppendString(nil, f.key), ':'),
		lowerPrefix: append(jsonvalue.AppendString(nil, lower), ':'),
	}
	if !f.explicit && startsUpper(f.key) {
		m.fallbackKey = lower
	}
	return m
}

// fieldsOf lists the exported fields of struct type t in declaration order.
// Untagged embedded structs, and exported embedded struct pointers, are
// flattened in place; a `json:"-"` tag skips a field and `json:"name"`
// overrides its key.
func fieldsOf(t reflect.Type) []field {
	var out []field
	flatten(t, nil, false, map[reflect.Type]bool{t: true}, &out)
	return dedupe(out)
}

func flatten(t reflect.Type, prefix []int, indirect bool, onPath map[reflect.Type]bool, out *[]field) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key, explicit, skip := parseTag(f.Tag.Get("json"))
		if skip {
			continue
		}
		index := append(append(make([]int, 0, len(prefix)+1), prefix...), i)
		if f.Anonymous && !explicit {
			if et, ptr, ok := embedded(f); ok {
				if !onPath[et] {
					onPath[et] = true
					flatten(et, index, indirect || ptr, onPath, out)
					delete(onPath, et)
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if !explicit {
			key = f.Name
		}
		*out = append(*out, field{
			name:     f.Name,
			key:      key,
			explicit: explicit,
			index:    index,
			typ:      f.Type,
			indirect: indirect,
		})
	}
}

// embedded reports the struct type promoted by anonymous field f. Pointers
// are followed only when exported, since decoding has to allocate them.
func embedded(f reflect.StructField) (t reflect.Type, ptr, ok bool) {
	t = f.Type
	if t.Kind() == reflect.Pointer {
		if !f.IsExported() {
			return nil, false, false
		}
		t, ptr = t.Elem(), true
	}
	return t, ptr, embeddable(t)
}

func embeddable(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t != timeType && t != valueType
}

// dedupe resolves key collisions between promoted fields the way Go resolves
// selectors: the shallowest field wins, the first declared breaks ties.
func dedupe(fields []field) []field {
	best := make(map[string]int, len(fields))
	for i, f := range fields {
		j, ok := best[f.key]
		if !ok || len(f.index) < len(fields[j].index) {
			best[f.key] = i
		}
	}
	if len(best) == len(fields) {
		return fields
	}
	out := fields[:0:0]
	for i, f := range fields {
		if best[f.key] == i {
			out = append(out, f)
		}
	}
	return out
}

func parseTag(tag string) (name string, explicit, skip bool) {
	if tag == "-" {
		return "", false, true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, name != "", false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
